package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ngoledger/internal/client"
	"ngoledger/internal/ledgerview"
	"ngoledger/internal/money"
)

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func (a *App) ngosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ngos",
		Short: "Browse NGOs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List NGOs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ngos, err := ledgerview.List(cmd.Context(), a.api)
			if err != nil {
				return err
			}
			return a.printNGOs(cmd.OutOrStdout(), ngos)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show an NGO with its donations and expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "ngo id")
			if err != nil {
				return err
			}
			d, err := ledgerview.LoadDetail(cmd.Context(), a.api, id, &a.logger)
			if err != nil {
				return err
			}
			ngo := d.NGO()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%d)\n", displayName(ngo.Name), ngo.ID)
			if ngo.Description != "" {
				fmt.Fprintln(out, ngo.Description)
			}
			if ngo.CertificateURL != "" {
				fmt.Fprintf(out, "Certificate: %s\n", ngo.CertificateURL)
			}
			if len(ngo.WorkImages) > 0 {
				fmt.Fprintf(out, "Work images: %s\n", strings.Join(ngo.WorkImages, ", "))
			}
			totals := d.Totals()
			fmt.Fprintf(out, "Donated %s, spent %s, balance %s\n\n",
				a.amount(money.FromMinor(totals.DonatedMinor)),
				a.amount(money.FromMinor(totals.SpentMinor)),
				a.amount(d.Balance()))
			fmt.Fprintln(out, "Donations:")
			if err := a.printTransactions(out, ngo.Incoming); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nExpenses:")
			return a.printTransactions(out, ngo.Outgoing)
		},
	})
	cmd.AddCommand(a.exportCmd())
	return cmd
}

func (a *App) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Search the ledger",
	}

	var (
		filter               client.TransactionFilter
		minAmount, maxAmount string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := filter
			var err error
			if minAmount != "" {
				if f.MinAmount, err = money.ParseAmount(minAmount); err != nil {
					return fmt.Errorf("invalid --min: %w", err)
				}
			}
			if maxAmount != "" {
				if f.MaxAmount, err = money.ParseAmount(maxAmount); err != nil {
					return fmt.Errorf("invalid --max: %w", err)
				}
			}
			txs, err := ledgerview.Search(cmd.Context(), a.api, f)
			if err != nil {
				return err
			}
			return a.printTransactions(cmd.OutOrStdout(), txs)
		},
	}
	list.Flags().StringVar(&filter.UserID, "user", "", "Filter by username or user id")
	list.Flags().Int64Var(&filter.NGOID, "ngo", 0, "Filter by NGO id")
	list.Flags().StringVar(&minAmount, "min", "", "Minimum amount")
	list.Flags().StringVar(&maxAmount, "max", "", "Maximum amount")
	list.Flags().StringVar(&filter.SortOrder, "sort", "desc", "Sort order: asc or desc")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction id")
			if err != nil {
				return err
			}
			tx, err := a.api.Transaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printTransaction(cmd.OutOrStdout(), *tx)
		},
	})
	return cmd
}
