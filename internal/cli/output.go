package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ngoledger/internal/domain"
	"ngoledger/internal/money"
)

var titleCaser = cases.Title(language.English)

// displayName title-cases an NGO name for listings.
func displayName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}

func (a *App) amount(v float64) string {
	return money.MustFormat(v, a.cfg.Currency)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func (a *App) printNGOs(w io.Writer, ngos []domain.NGO) error {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tADMIN\tDESCRIPTION")
	for _, n := range ngos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, displayName(n.Name), n.Admin, n.Description)
	}
	return tw.Flush()
}

func (a *App) printTransactions(w io.Writer, txs []domain.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions found.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTYPE\tAMOUNT\tNGO\tUSER\tTIME\tHASH")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Type, a.amount(tx.Amount), displayName(tx.NGOName), dash(tx.Username),
			tx.Timestamp.Local().Format(time.DateTime), shortHash(tx.BlockchainHash))
	}
	return tw.Flush()
}

func (a *App) printTransaction(w io.Writer, tx domain.Transaction) error {
	tw := table(w)
	fmt.Fprintf(tw, "ID:\t%d\n", tx.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", tx.Type)
	fmt.Fprintf(tw, "Amount:\t%s\n", a.amount(tx.Amount))
	fmt.Fprintf(tw, "NGO:\t%s\n", displayName(tx.NGOName))
	fmt.Fprintf(tw, "User:\t%s\n", dash(tx.Username))
	fmt.Fprintf(tw, "Time:\t%s\n", tx.Timestamp.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Hash:\t%s\n", tx.BlockchainHash)
	if tx.ProofURL != "" {
		fmt.Fprintf(tw, "Proof:\t%s\n", tx.ProofURL)
	}
	if tx.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", tx.Description)
	}
	if tx.RazorpayPaymentID != "" {
		fmt.Fprintf(tw, "Payment:\t%s\n", tx.RazorpayPaymentID)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}

// prompt reads one line from in after writing label to out.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
