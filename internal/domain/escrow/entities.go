package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeHeld       Outcome = ""
	OutcomeReleased   Outcome = "released"
	OutcomeLiquidated Outcome = "liquidated"
)

// Deposit is the collateral held for one loan. Released flips exactly once.
type Deposit struct {
	LoanID      uint64          `gorm:"primaryKey;autoIncrement:false" json:"loan_id"`
	Asset       common.Address  `gorm:"type:binary(20);not null" json:"asset"`
	Amount      decimal.Decimal `gorm:"type:varchar(80);not null" json:"amount"`
	Depositor   common.Address  `gorm:"type:binary(20);not null" json:"depositor"`
	Released    bool            `gorm:"not null" json:"released"`
	Outcome     Outcome         `gorm:"type:varchar(16)" json:"outcome"`
	Recipient   common.Address  `gorm:"type:binary(20)" json:"recipient"`
	DepositedAt int64           `json:"deposited_at"`
	ReleasedAt  int64           `json:"released_at"`
}

func (Deposit) TableName() string { return "collateral_deposits" }
