package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ngoledger/internal/domain"
	"ngoledger/internal/ledgerview"
	"ngoledger/pkg/zip"
)

func (a *App) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write an NGO's ledger to a zip of JSON and CSV files",
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
			raw, err := exportArchive(d.NGO(), time.Now())
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("ngo-%d-ledger.zip", id)
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Archive path (default ngo-<id>-ledger.zip)")
	return cmd
}

func exportArchive(ngo domain.NGODetail, at time.Time) ([]byte, error) {
	meta, err := json.MarshalIndent(ngo.NGO, "", "  ")
	if err != nil {
		return nil, err
	}
	donations, err := ledgerCSV(ngo.Incoming)
	if err != nil {
		return nil, err
	}
	expenses, err := ledgerCSV(ngo.Outgoing)
	if err != nil {
		return nil, err
	}
	return zip.Archive([]zip.File{
		{Name: "ngo.json", Data: meta, Modified: at},
		{Name: "donations.csv", Data: donations, Modified: at},
		{Name: "expenses.csv", Data: expenses, Modified: at},
	})
}

var ledgerHeader = []string{"id", "timestamp", "type", "amount", "user", "description", "proof_url", "blockchain_hash", "payment_id"}

func ledgerCSV(txs []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ledgerHeader); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		row := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Timestamp.UTC().Format(time.RFC3339),
			string(tx.Type),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Username,
			tx.Description,
			tx.ProofURL,
			tx.BlockchainHash,
			tx.RazorpayPaymentID,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
