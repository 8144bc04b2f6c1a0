// Package cli is the ngoctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ngoledger/internal/checkout"
	"ngoledger/internal/client"
	"ngoledger/internal/config"
	"ngoledger/internal/infra"
	"ngoledger/internal/session"
)

// App carries the command dependencies. Zero fields are filled from the
// profile when a command runs.
type App struct {
	Home       string
	ConfigPath string
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	// Widget overrides the hosted checkout page.
	Widget checkout.Widget
	// Store overrides the bolt session file.
	Store session.Store

	verbose    bool
	cfg        config.Config
	logger     infra.Logger
	session    *session.Session
	api        *client.Client
	closeStore func() error
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	root := &cobra.Command{
		Use:   "ngoctl",
		Short: "ngoctl - browse NGO ledgers, donate and manage an NGO",
		Long: `ngoctl talks to the NGO ledger API.

Browse NGOs and their donations and expenses, donate through the payment
gateway checkout, and manage the NGO you administer.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return app.setup() },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.teardown()
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "Profile path (default ~/.ngoledger/config.yaml)")

	root.AddCommand(
		app.loginCmd(),
		app.registerCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.ngosCmd(),
		app.transactionsCmd(),
		app.donateCmd(),
		app.adminCmd(),
		app.configCmd(),
		versionCmd,
	)
	return root
}

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ngoctl", version)
	},
}

// Run executes args against a fresh command tree and always releases the
// session store, even when the command fails.
func (a *App) Run(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

// Execute runs ngoctl with the process environment.
func Execute(v string) error {
	version = v
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	if err := (&App{Home: home}).Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *App) setup() error {
	if a.ConfigPath == "" {
		a.ConfigPath = config.DefaultPath(a.Home)
	}
	cfg, err := config.Load(a.ConfigPath, a.Home)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = infra.NewConsoleLogger(a.Err, a.verbose)

	store := a.Store
	if store == nil {
		bolt, err := session.OpenBolt(cfg.Session.Path)
		if err != nil {
			return err
		}
		store = bolt
		a.closeStore = bolt.Close
	}
	a.api = client.New(client.Options{
		BaseURL:        cfg.API.URL,
		Tokens:         client.TokenFunc(func() string { return a.session.Token() }),
		Logger:         &a.logger,
		RequestTimeout: cfg.APITimeout(),
	})
	a.session = session.New(store, a.api, &a.logger)
	return a.session.Load()
}

func (a *App) teardown() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

// errLoginRequired is returned by commands that need a session.
var errLoginRequired = errors.New("not logged in, run 'ngoctl login <username>' first")

func (a *App) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errLoginRequired
	}
	return nil
}
