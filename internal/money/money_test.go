package money

import (
	"errors"
	"strings"
	"testing"

	"ngoledger/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "500", want: 500},
		{in: " 250.5 ", want: 250.5},
		{in: "1,000.25", want: 1000.25},
		{in: "0.01", want: 0.01},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-10", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.005", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "1e30", wantErr: true},
		{in: "100000000000000000000", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) err = %v, want ErrInvalidAmount", tc.in, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParseAmount(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestFormatGroupsDigits(t *testing.T) {
	got, err := Format(1234.5, "inr")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasSuffix(got, "1,234.50") {
		t.Fatalf("Format = %q, want suffix 1,234.50", got)
	}
	neg, _ := Format(-3, "USD")
	if !strings.HasPrefix(neg, "-") || !strings.HasSuffix(neg, "3.00") {
		t.Fatalf("Format(-3) = %q", neg)
	}
}

func TestFormatRejectsUnknownCurrency(t *testing.T) {
	if _, err := Format(1, "XXQ"); err == nil {
		t.Fatalf("expected error for unknown currency")
	}
	if got := MustFormat(2, "XXQ"); got != "2.00" {
		t.Fatalf("MustFormat fallback = %q, want 2.00", got)
	}
}

func TestMinorRoundTrip(t *testing.T) {
	if ToMinor(500) != 50000 || FromMinor(25050) != 250.5 {
		t.Fatalf("minor conversion mismatch")
	}
}
