package lending

import "github.com/shopspring/decimal"

const (
	BasisPoints        = 10_000
	OriginationFeeBps  = 50  // 0.5% of principal, taken at funding
	InterestFeeBps     = 500 // 5% of the interest portion, taken at repayment
	MaxInterestRateBps = 5_000
	MinDurationDays    = 1
	MaxDurationDays    = 90
	SecondsPerDay      = 86_400
)

var bpsDenominator = decimal.NewFromInt(BasisPoints)

// applyBps returns floor(amount * bps / 10000). Amounts are whole base units.
func applyBps(amount decimal.Decimal, bps int64) decimal.Decimal {
	q, _ := amount.Mul(decimal.NewFromInt(bps)).QuoRem(bpsDenominator, 0)
	return q
}

// RepaymentAmount is principal plus simple interest over the whole term.
func RepaymentAmount(principal decimal.Decimal, rateBps uint32) decimal.Decimal {
	return principal.Add(applyBps(principal, int64(rateBps)))
}

func OriginationFee(principal decimal.Decimal, bps int64) decimal.Decimal {
	return applyBps(principal, bps)
}

func InterestFee(repayment, principal decimal.Decimal, bps int64) decimal.Decimal {
	return applyBps(repayment.Sub(principal), bps)
}
