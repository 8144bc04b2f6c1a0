package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"ngoledger/internal/client"
	"ngoledger/internal/dashboard"
	"ngoledger/internal/domain"
	"ngoledger/internal/imgur"
	"ngoledger/internal/money"
	"ngoledger/internal/storage"
)

// loadDashboard loads the administered NGO. Images go to Imgur when a
// client id is configured, otherwise to the local image directory if set.
func (a *App) loadDashboard(cmd *cobra.Command) (*dashboard.Dashboard, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	opts := dashboard.Options{API: a.api, Logger: &a.logger}
	if a.cfg.Imgur.ClientID != "" {
		up, err := imgur.New(imgur.Options{ClientID: a.cfg.Imgur.ClientID, BaseURL: a.cfg.Imgur.BaseURL, Logger: &a.logger})
		if err != nil {
			return nil, err
		}
		opts.Uploader = up
	} else if a.cfg.Images.Dir != "" {
		fs, err := storage.NewFileStore(a.cfg.Images.Dir, a.cfg.Images.PublicURL)
		if err != nil {
			return nil, err
		}
		opts.Uploader = fs
	}
	d := dashboard.New(opts)
	if _, err := d.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *App) printDashboard(cmd *cobra.Command, d *dashboard.Dashboard) error {
	ngo := d.NGO()
	out := cmd.OutOrStdout()
	tw := table(out)
	fmt.Fprintf(tw, "ID:\t%d\n", ngo.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", ngo.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", ngo.Description)
	fmt.Fprintf(tw, "Logo:\t%s\n", dash(ngo.LogoURL))
	fmt.Fprintf(tw, "Certificate:\t%s\n", dash(ngo.CertificateURL))
	for i, img := range ngo.WorkImages {
		fmt.Fprintf(tw, "Work image %d:\t%s\n", i, img)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nExpenses:")
	return a.printTransactions(out, d.Expenses())
}

func (a *App) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the NGO you administer",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your NGO and its expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.loadDashboard(cmd)
			if err != nil {
				return err
			}
			return a.printDashboard(cmd, d)
		},
	})
	cmd.AddCommand(a.adminUpdateCmd(), a.adminExpenseCmd(), a.adminUploadCmd())
	return cmd
}

func (a *App) adminUpdateCmd() *cobra.Command {
	var (
		name, description, logo, certificate string
		addImages                            []string
		removeImages                         []int
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your NGO's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.loadDashboard(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			d.Edit(func(u *domain.NGOUpdate) {
				if flags.Changed("name") {
					u.Name = name
				}
				if flags.Changed("description") {
					u.Description = description
				}
				if flags.Changed("logo") {
					u.LogoURL = logo
				}
				if flags.Changed("certificate") {
					u.CertificateURL = certificate
				}
			})
			// Remove from the highest index down so earlier indexes stay valid.
			sort.Sort(sort.Reverse(sort.IntSlice(removeImages)))
			for _, i := range removeImages {
				d.RemoveImage(i)
			}
			for _, img := range addImages {
				d.AddImage(img)
			}
			if _, err := d.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "NGO updated")
			return a.printDashboard(cmd, d)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "New name")
	f.StringVar(&description, "description", "", "New description")
	f.StringVar(&logo, "logo", "", "Logo URL")
	f.StringVar(&certificate, "certificate", "", "Certificate URL")
	f.StringSliceVar(&addImages, "add-image", nil, "Work image URL to append (repeatable)")
	f.IntSliceVar(&removeImages, "remove-image", nil, "Index of a work image to remove (repeatable)")
	return cmd
}

func (a *App) adminExpenseCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "expense <amount> <proof-url>",
		Short: "Record an expense with a receipt link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.ParseAmount(args[0])
			if err != nil {
				return errors.New("Please enter a valid amount")
			}
			d, err := a.loadDashboard(cmd)
			if err != nil {
				return err
			}
			tx, err := d.AddExpense(cmd.Context(), client.ExpenseInput{Amount: amount, ProofURL: args[1], Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense #%d of %s recorded with hash %s\n", tx.ID, a.amount(tx.Amount), tx.BlockchainHash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "What the money was spent on")
	return cmd
}

func (a *App) adminUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "upload <logo|certificate|work> <file>",
		Short:     "Upload an image and attach it to your NGO",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(dashboard.TargetLogo), string(dashboard.TargetCertificate), string(dashboard.TargetWork)},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			d, err := a.loadDashboard(cmd)
			if err != nil {
				return err
			}
			link, err := d.UploadImage(cmd.Context(), dashboard.Target(args[0]), filepath.Base(args[1]), data)
			if err != nil {
				if errors.Is(err, dashboard.ErrNoUploader) {
					return fmt.Errorf("%w: set imgur.client_id, NGOLEDGER_IMGUR_CLIENT_ID or images.dir", err)
				}
				return err
			}
			if _, err := d.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", link)
			return nil
		},
	}
}
