package mysql

import (
	"context"
	"errors"
	"fmt"

	"lenoa-backend/internal/domain/funds"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger keeps per-account balances in the database. Every Pull lands in the
// custody account and every Pay is drawn from it.
type Ledger struct {
	db      *gorm.DB
	custody common.Address
}

var _ funds.Ledger = (*Ledger)(nil)

func NewLedger(db *gorm.DB, custody common.Address) *Ledger {
	return &Ledger{db: db, custody: custody}
}

func (l *Ledger) Custody() common.Address { return l.custody }

func (l *Ledger) lockBalance(ctx context.Context, account, asset common.Address) (decimal.Decimal, error) {
	var b funds.Balance
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ? AND asset = ?", account, asset).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return b.Amount, nil
}

func (l *Ledger) putBalance(ctx context.Context, account, asset common.Address, amount decimal.Decimal) error {
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}, {Name: "asset"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(&funds.Balance{Account: account, Asset: asset, Amount: amount}).Error
}

func (l *Ledger) move(ctx context.Context, from, to, asset common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return funds.ErrInvalidAmount
	}
	if amount.IsZero() || from == to {
		return nil
	}
	src, err := l.lockBalance(ctx, from, asset)
	if err != nil {
		return err
	}
	if src.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s",
			funds.ErrInsufficientBalance, from.Hex(), src, asset.Hex(), amount)
	}
	dst, err := l.lockBalance(ctx, to, asset)
	if err != nil {
		return err
	}
	if err := l.putBalance(ctx, from, asset, src.Sub(amount)); err != nil {
		return err
	}
	return l.putBalance(ctx, to, asset, dst.Add(amount))
}

func (l *Ledger) Pull(ctx context.Context, from, asset common.Address, amount decimal.Decimal) error {
	return l.move(ctx, from, l.custody, asset, amount)
}

func (l *Ledger) Pay(ctx context.Context, to, asset common.Address, amount decimal.Decimal) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: zero recipient", funds.ErrPayoutFailed)
	}
	var p funds.PayoutPolicy
	err := l.db.WithContext(ctx).Where("account = ?", to).First(&p).Error
	switch {
	case err == nil && p.RejectsPayouts:
		return fmt.Errorf("%w: %s rejects payouts", funds.ErrPayoutFailed, to.Hex())
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return l.move(ctx, l.custody, to, asset, amount)
}

func (l *Ledger) BalanceOf(ctx context.Context, account, asset common.Address) (decimal.Decimal, error) {
	var b funds.Balance
	err := l.db.WithContext(ctx).Where("account = ? AND asset = ?", account, asset).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return b.Amount, nil
}

// Credit adds value to an account from outside the engine.
func (l *Ledger) Credit(ctx context.Context, account, asset common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return funds.ErrInvalidAmount
	}
	cur, err := l.lockBalance(ctx, account, asset)
	if err != nil {
		return err
	}
	return l.putBalance(ctx, account, asset, cur.Add(amount))
}

func (l *Ledger) SetPayoutRejection(ctx context.Context, account common.Address, rejects bool) error {
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"rejects_payouts"}),
		}).
		Create(&funds.PayoutPolicy{Account: account, RejectsPayouts: rejects}).Error
}

func (l *Ledger) lockFees(ctx context.Context, asset common.Address) (decimal.Decimal, error) {
	var f funds.FeeAccrual
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("asset = ?", asset).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return f.Amount, nil
}

func (l *Ledger) putFees(ctx context.Context, asset common.Address, amount decimal.Decimal) error {
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(&funds.FeeAccrual{Asset: asset, Amount: amount}).Error
}

func (l *Ledger) AccrueFee(ctx context.Context, asset common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return funds.ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	cur, err := l.lockFees(ctx, asset)
	if err != nil {
		return err
	}
	return l.putFees(ctx, asset, cur.Add(amount))
}

func (l *Ledger) FeesAccrued(ctx context.Context, asset common.Address) (decimal.Decimal, error) {
	var f funds.FeeAccrual
	err := l.db.WithContext(ctx).Where("asset = ?", asset).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return f.Amount, nil
}

func (l *Ledger) TakeFees(ctx context.Context, asset common.Address) (decimal.Decimal, error) {
	cur, err := l.lockFees(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if cur.IsZero() {
		return cur, nil
	}
	return cur, l.putFees(ctx, asset, decimal.Zero)
}
