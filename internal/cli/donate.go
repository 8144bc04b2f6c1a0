package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ngoledger/internal/checkout"
	"ngoledger/internal/checkout/hosted"
	"ngoledger/internal/ledgerview"
)

func (a *App) widget(cmd *cobra.Command) checkout.Widget {
	if a.Widget != nil {
		return a.Widget
	}
	return hosted.New(hosted.Options{
		Addr:      a.cfg.Checkout.Addr,
		ScriptURL: a.cfg.Checkout.ScriptURL,
		Logger:    &a.logger,
		Launch: func(url string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Complete the payment at %s\n", url)
			return err
		},
	})
}

func (a *App) donateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "donate <ngo-id> <amount>",
		Short: "Donate to an NGO through the payment gateway checkout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "ngo id")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.CheckoutTimeout())
			defer cancel()

			detail, err := ledgerview.LoadDetail(ctx, a.api, id, &a.logger)
			if err != nil {
				return err
			}
			form := checkout.NewForm(checkout.FormOptions{
				NGOID:    id,
				Payments: a.api,
				Widget:   a.widget(cmd),
				Identity: a.session,
				Notify:   detail.Notifier(),
				Logger:   &a.logger,
			})
			form.SetAmount(args[1])
			if err := form.Submit(ctx); err != nil {
				if msg := form.Error(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			out, err := form.Wait(ctx)
			if err != nil {
				form.Reset()
				return fmt.Errorf("checkout did not finish: %w", err)
			}
			w := cmd.OutOrStdout()
			switch out.Phase {
			case checkout.PhaseSettled:
				if tx := out.Result.Transaction; tx != nil {
					fmt.Fprintf(w, "Thank you! Donation #%d of %s recorded with hash %s\n", tx.ID, a.amount(tx.Amount), tx.BlockchainHash)
				} else {
					fmt.Fprintln(w, "Thank you! Your donation was recorded.")
				}
				fmt.Fprintf(w, "%s now has %d donations.\n", displayName(detail.NGO().Name), len(detail.NGO().Incoming))
				return nil
			case checkout.PhaseCancelled:
				fmt.Fprintln(w, "Donation cancelled.")
				return nil
			default:
				return errors.New(out.Message)
			}
		},
	}
}
