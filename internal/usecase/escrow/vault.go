package escrow

import (
	"context"
	"errors"
	"fmt"

	"lenoa-backend/internal/domain/access"
	domain "lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/funds"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vault holds loan collateral and disburses each deposit exactly once.
// Only the factory (the loan ledger) may move collateral.
type Vault struct {
	repo    domain.Repository
	funds   funds.Port
	factory common.Address
	now     func() int64
}

func NewVault(repo domain.Repository, port funds.Port, factory common.Address, now func() int64) *Vault {
	return &Vault{repo: repo, funds: port, factory: factory, now: now}
}

func (v *Vault) onlyFactory(caller common.Address) error {
	if caller != v.factory {
		return access.ErrOnlyFactory
	}
	return nil
}

func (v *Vault) Deposit(ctx context.Context, caller common.Address, loanID uint64, asset common.Address, amount decimal.Decimal, depositor common.Address) error {
	if err := v.onlyFactory(caller); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return domain.ErrZeroAmount
	}
	_, err := v.repo.GetByLoanID(ctx, loanID)
	switch {
	case err == nil:
		return domain.ErrAlreadyDeposited
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if err := v.funds.Pull(ctx, depositor, asset, amount); err != nil {
		return fmt.Errorf("escrow: pull collateral: %w", err)
	}
	return v.repo.Create(ctx, &domain.Deposit{
		LoanID:      loanID,
		Asset:       asset,
		Amount:      amount,
		Depositor:   depositor,
		DepositedAt: v.now(),
	})
}

// Release returns the collateral to its depositor.
func (v *Vault) Release(ctx context.Context, caller common.Address, loanID uint64) (*domain.Deposit, error) {
	if err := v.onlyFactory(caller); err != nil {
		return nil, err
	}
	d, err := v.lockHeld(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return d, v.disburse(ctx, d, d.Depositor, domain.OutcomeReleased)
}

// Liquidate sends the collateral to payee instead of the depositor.
func (v *Vault) Liquidate(ctx context.Context, caller common.Address, loanID uint64, payee common.Address) (*domain.Deposit, error) {
	if err := v.onlyFactory(caller); err != nil {
		return nil, err
	}
	d, err := v.lockHeld(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return d, v.disburse(ctx, d, payee, domain.OutcomeLiquidated)
}

func (v *Vault) Get(ctx context.Context, loanID uint64) (*domain.Deposit, error) {
	d, err := v.repo.GetByLoanID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (v *Vault) lockHeld(ctx context.Context, loanID uint64) (*domain.Deposit, error) {
	d, err := v.repo.GetByLoanIDForUpdate(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Released {
		return nil, domain.ErrAlreadyReleased
	}
	return d, nil
}

func (v *Vault) disburse(ctx context.Context, d *domain.Deposit, to common.Address, outcome domain.Outcome) error {
	if err := v.funds.Pay(ctx, to, d.Asset, d.Amount); err != nil {
		return fmt.Errorf("escrow: pay collateral: %w", err)
	}
	d.Released = true
	d.Outcome = outcome
	d.Recipient = to
	d.ReleasedAt = v.now()
	return v.repo.Save(ctx, d)
}
