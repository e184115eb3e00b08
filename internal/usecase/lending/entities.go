package lending

import (
	"lenoa-backend/internal/domain/loan"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	Borrower         common.Address
	LoanAsset        common.Address
	LoanAmount       decimal.Decimal
	InterestRateBps  uint32
	DurationDays     uint32
	CollateralAsset  common.Address
	CollateralAmount decimal.Decimal
	// Value is the native amount attached to the call.
	Value decimal.Decimal
}

type FundLoanInput struct {
	Funder common.Address
	LoanID uint64
	Value  decimal.Decimal
}

type RepayLoanInput struct {
	Caller common.Address
	LoanID uint64
	Value  decimal.Decimal
}

type LiquidateLoanInput struct {
	Caller common.Address
	LoanID uint64
}

type CancelLoanInput struct {
	Caller common.Address
	LoanID uint64
}

type LoanDTO struct {
	ID               uint64 `json:"id"`
	Borrower         string `json:"borrower"`
	Lender           string `json:"lender,omitempty"`
	LoanAsset        string `json:"loan_asset"`
	LoanAmount       string `json:"loan_amount"`
	InterestRateBps  uint32 `json:"interest_rate_bps"`
	RepaymentAmount  string `json:"repayment_amount"`
	CollateralAsset  string `json:"collateral_asset"`
	CollateralAmount string `json:"collateral_amount"`
	DurationSeconds  int64  `json:"duration_seconds"`
	Deadline         int64  `json:"deadline,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	FundedAt         int64  `json:"funded_at,omitempty"`
	SettledAt        int64  `json:"settled_at,omitempty"`
	Status           string `json:"status"`
}

// SettlementDTO describes who was paid when a loan closed out.
type SettlementDTO struct {
	Loan   *LoanDTO `json:"loan"`
	Payee  string   `json:"payee"`
	Asset  string   `json:"asset"`
	Amount string   `json:"amount"`
	Fee    string   `json:"fee"`
}

// CollateralDTO is the escrow record behind a loan.
type CollateralDTO struct {
	LoanID      uint64 `json:"loan_id"`
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
	Depositor   string `json:"depositor"`
	Released    bool   `json:"released"`
	Outcome     string `json:"outcome,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	DepositedAt int64  `json:"deposited_at"`
	ReleasedAt  int64  `json:"released_at,omitempty"`
}

type LoanPage struct {
	Items  []LoanDTO `json:"items"`
	Total  int64     `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		ID:               l.ID,
		Borrower:         l.Borrower.Hex(),
		LoanAsset:        l.LoanAsset.Hex(),
		LoanAmount:       l.LoanAmount.String(),
		InterestRateBps:  l.InterestRateBps,
		RepaymentAmount:  l.RepaymentAmount.String(),
		CollateralAsset:  l.CollateralAsset.Hex(),
		CollateralAmount: l.CollateralAmount.String(),
		DurationSeconds:  l.DurationSeconds,
		Deadline:         l.Deadline,
		CreatedAt:        l.CreatedAt,
		FundedAt:         l.FundedAt,
		SettledAt:        l.SettledAt,
		Status:           string(l.Status),
	}
	if l.IsFunded() {
		dto.Lender = l.Lender.Hex()
	}
	return dto
}

func toDTOs(ls []loan.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out
}
