package asset

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Native is the sentinel identifier of the platform's native asset.
var Native = common.Address{}

type SupportedAsset struct {
	Address   common.Address  `gorm:"primaryKey;type:binary(20)" json:"address"`
	Symbol    string          `gorm:"size:16;not null" json:"symbol"`
	Decimals  uint8           `gorm:"not null" json:"decimals"`
	MinAmount decimal.Decimal `gorm:"type:varchar(80);not null" json:"min_amount"`
	MaxAmount decimal.Decimal `gorm:"type:varchar(80);not null" json:"max_amount"`
	Enabled   bool            `gorm:"not null" json:"enabled"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SupportedAsset) TableName() string { return "assets" }

func (a *SupportedAsset) IsNative() bool { return a.Address == Native }

// Within reports min <= amount <= max.
func (a *SupportedAsset) Within(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(a.MinAmount) && amount.LessThanOrEqual(a.MaxAmount)
}

func IsNative(addr common.Address) bool { return addr == Native }
