package lending

import (
	"strconv"
	"time"

	"lenoa-backend/internal/domain/event"
	"lenoa-backend/internal/domain/loan"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

func loanAttrs(l *loan.Loan) map[string]string {
	return map[string]string{
		"loan_id":  strconv.FormatUint(l.ID, 10),
		"borrower": l.Borrower.Hex(),
		"asset":    l.LoanAsset.Hex(),
	}
}

func requestCreatedEvent(l *loan.Loan, at time.Time) event.Event {
	attrs := loanAttrs(l)
	attrs["amount"] = l.LoanAmount.String()
	attrs["interest_rate_bps"] = strconv.FormatUint(uint64(l.InterestRateBps), 10)
	attrs["duration_seconds"] = strconv.FormatInt(l.DurationSeconds, 10)
	attrs["collateral_asset"] = l.CollateralAsset.Hex()
	attrs["collateral_amount"] = l.CollateralAmount.String()
	return event.New(event.TypeLoanRequestCreated, l.ID, at, attrs)
}

func fundedEvent(l *loan.Loan, fee decimal.Decimal, at time.Time) event.Event {
	attrs := loanAttrs(l)
	attrs["lender"] = l.Lender.Hex()
	attrs["amount"] = l.LoanAmount.String()
	attrs["fee"] = fee.String()
	attrs["deadline"] = strconv.FormatInt(l.Deadline, 10)
	return event.New(event.TypeLoanFunded, l.ID, at, attrs)
}

func repaidEvent(l *loan.Loan, payee common.Address, paid, fee decimal.Decimal, at time.Time) event.Event {
	attrs := loanAttrs(l)
	attrs["payee"] = payee.Hex()
	attrs["amount"] = paid.String()
	attrs["fee"] = fee.String()
	return event.New(event.TypeLoanRepaid, l.ID, at, attrs)
}

func defaultedEvent(l *loan.Loan, payee, liquidator common.Address, at time.Time) event.Event {
	attrs := loanAttrs(l)
	attrs["payee"] = payee.Hex()
	attrs["liquidator"] = liquidator.Hex()
	attrs["collateral_asset"] = l.CollateralAsset.Hex()
	attrs["collateral_amount"] = l.CollateralAmount.String()
	return event.New(event.TypeLoanDefaulted, l.ID, at, attrs)
}

func cancelledEvent(l *loan.Loan, at time.Time) event.Event {
	attrs := loanAttrs(l)
	attrs["collateral_amount"] = l.CollateralAmount.String()
	return event.New(event.TypeLoanCancelled, l.ID, at, attrs)
}
