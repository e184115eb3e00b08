package funds

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Port moves value between accounts and the engine's custody account.
type Port interface {
	// Pull moves amount from an account into custody.
	Pull(ctx context.Context, from, asset common.Address, amount decimal.Decimal) error
	// Pay moves amount out of custody. A recipient that rejects it fails the call.
	Pay(ctx context.Context, to, asset common.Address, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, account, asset common.Address) (decimal.Decimal, error)
}

// Ledger is the Port plus the bookkeeping the treasury needs.
type Ledger interface {
	Port

	Credit(ctx context.Context, account, asset common.Address, amount decimal.Decimal) error
	SetPayoutRejection(ctx context.Context, account common.Address, rejects bool) error

	AccrueFee(ctx context.Context, asset common.Address, amount decimal.Decimal) error
	FeesAccrued(ctx context.Context, asset common.Address) (decimal.Decimal, error)
	// TakeFees zeroes the accrual and returns what it held.
	TakeFees(ctx context.Context, asset common.Address) (decimal.Decimal, error)
}
