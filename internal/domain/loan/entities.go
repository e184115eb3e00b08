package loan

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRepaid, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusRepaid || s == StatusDefaulted || s == StatusCancelled
}

func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusRepaid || to == StatusDefaulted
	}
	return false
}

type Loan struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	Borrower         common.Address  `gorm:"type:binary(20);index:idx_loans_borrower;not null" json:"borrower"`
	Lender           common.Address  `gorm:"type:binary(20);index:idx_loans_lender" json:"lender"`
	LoanAsset        common.Address  `gorm:"type:binary(20);not null" json:"loan_asset"`
	LoanAmount       decimal.Decimal `gorm:"type:varchar(80);not null" json:"loan_amount"`
	InterestRateBps  uint32          `gorm:"not null" json:"interest_rate_bps"`
	RepaymentAmount  decimal.Decimal `gorm:"type:varchar(80);not null" json:"repayment_amount"`
	CollateralAsset  common.Address  `gorm:"type:binary(20);not null" json:"collateral_asset"`
	CollateralAmount decimal.Decimal `gorm:"type:varchar(80);not null" json:"collateral_amount"`
	DurationSeconds  int64           `gorm:"not null" json:"duration_seconds"`
	// Deadline stays zero until the loan is funded.
	Deadline  int64  `gorm:"index:idx_loans_status_deadline,priority:2" json:"deadline"`
	CreatedAt int64  `gorm:"autoCreateTime:false" json:"created_at"`
	FundedAt  int64  `json:"funded_at"`
	SettledAt int64  `json:"settled_at"`
	Status    Status `gorm:"type:varchar(16);not null;index:idx_loans_status_deadline,priority:1" json:"status"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) IsFunded() bool { return l.Lender != (common.Address{}) }

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

// AccountLoan is one append-only entry of an account's loan list.
type AccountLoan struct {
	Seq     uint64         `gorm:"primaryKey;autoIncrement;column:seq"`
	Account common.Address `gorm:"type:binary(20);not null;index:idx_account_loans_account_role,priority:1"`
	Role    Role           `gorm:"type:varchar(16);not null;index:idx_account_loans_account_role,priority:2"`
	LoanID  uint64         `gorm:"not null"`
}

func (AccountLoan) TableName() string { return "account_loans" }

// Sequence hands out loan ids inside the creating transaction so a rolled
// back request never consumes one.
type Sequence struct {
	Name string `gorm:"primaryKey;size:32"`
	Next uint64 `gorm:"column:next_value;not null"`
}

func (Sequence) TableName() string { return "sequences" }

type Filter struct {
	Status Status
	Offset int
	Limit  int
}
