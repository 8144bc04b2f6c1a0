package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) password(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return prompt(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), "Password: ")
}

func (a *App) loginCmd() *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.password(cmd, pw)
			if err != nil {
				return err
			}
			u, err := a.session.Login(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Username)
			if u.IsNGOAdmin && u.NGOID != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "You administer NGO %d\n", *u.NGOID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pw, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.password(cmd, pw)
			if err != nil {
				return err
			}
			u, err := a.session.Register(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pw, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := a.session.User()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.Username)
			if u.IsNGOAdmin && u.NGOID != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "NGO admin of %d\n", *u.NGOID)
			}
			return nil
		},
	}
}
