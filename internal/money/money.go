// Package money parses user-entered amounts and formats them for display.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ngoledger/internal/domain"
)

// ErrInvalidAmount is returned for empty, non-numeric or non-positive input.
var ErrInvalidAmount = fmt.Errorf("money: %w", domain.ErrInvalidAmount)

// ParseAmount reads a positive amount with at most two decimals.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !domain.ValidAmount(v) {
		return 0, ErrInvalidAmount
	}
	if dot := strings.IndexByte(raw, '.'); dot >= 0 && len(raw)-dot-1 > 2 {
		return 0, ErrInvalidAmount
	}
	if domain.ToMinor(v) <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ToMinor converts a major-unit amount to minor units.
func ToMinor(amount float64) int64 { return domain.ToMinor(amount) }

// FromMinor converts minor units to a major-unit amount.
func FromMinor(minor int64) float64 { return domain.FromMinor(minor) }

// Format renders amount with the narrow symbol of currencyCode and English
// digit grouping, e.g. "₹1,234.50".
func Format(amount float64, currencyCode string) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", errors.New("money: amount is not finite")
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return "", fmt.Errorf("money: %w", err)
	}
	p := message.NewPrinter(language.English)
	symbol := fmt.Sprint(currency.NarrowSymbol(unit))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + p.Sprintf("%.2f", amount), nil
}

// MustFormat is Format for known-good currency codes; on error it falls back
// to the plain number.
func MustFormat(amount float64, currencyCode string) string {
	s, err := Format(amount, currencyCode)
	if err != nil {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return s
}
