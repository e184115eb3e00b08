package funds

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Balance struct {
	Account common.Address  `gorm:"primaryKey;type:binary(20)"`
	Asset   common.Address  `gorm:"primaryKey;type:binary(20)"`
	Amount  decimal.Decimal `gorm:"type:varchar(80);not null"`
}

func (Balance) TableName() string { return "balances" }

// PayoutPolicy marks recipients that refuse incoming value.
type PayoutPolicy struct {
	Account        common.Address `gorm:"primaryKey;type:binary(20)"`
	RejectsPayouts bool           `gorm:"not null"`
}

func (PayoutPolicy) TableName() string { return "payout_policies" }

// FeeAccrual is protocol revenue held in custody until withdrawn.
type FeeAccrual struct {
	Asset  common.Address  `gorm:"primaryKey;type:binary(20)"`
	Amount decimal.Decimal `gorm:"type:varchar(80);not null"`
}

func (FeeAccrual) TableName() string { return "fee_accruals" }
