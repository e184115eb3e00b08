package lending

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFeeMath(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		rate      uint32
		repayment string
		origFee   string
		intFee    string
	}{
		{"one ether at 10%", "1000000000000000000", 1000, "1100000000000000000", "5000000000000000", "5000000000000000"},
		{"rounds down", "199", 1, "199", "0", "0"},
		{"max rate", "10000", 5000, "15000", "50", "250"},
		{"odd units", "12345", 333, "12756", "61", "20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := dec(tc.principal)
			rep := RepaymentAmount(p, tc.rate)
			if !rep.Equal(dec(tc.repayment)) {
				t.Fatalf("repayment = %s, want %s", rep, tc.repayment)
			}
			if got := OriginationFee(p, OriginationFeeBps); !got.Equal(dec(tc.origFee)) {
				t.Fatalf("origination fee = %s, want %s", got, tc.origFee)
			}
			if got := InterestFee(rep, p, InterestFeeBps); !got.Equal(dec(tc.intFee)) {
				t.Fatalf("interest fee = %s, want %s", got, tc.intFee)
			}
		})
	}
}

func TestFeeMath_BeyondInt64(t *testing.T) {
	p := dec("10000").Shift(18)
	rep := RepaymentAmount(p, 2500)
	if want := dec("12500").Shift(18); !rep.Equal(want) {
		t.Fatalf("repayment = %s, want %s", rep, want)
	}
	if got := OriginationFee(p, OriginationFeeBps); !got.Equal(dec("50").Shift(18)) {
		t.Fatalf("origination fee = %s", got)
	}
}
