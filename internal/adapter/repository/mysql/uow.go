package mysql

import (
	"context"
	"errors"

	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/domain/uow"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

type GormUoW struct {
	db      *gorm.DB
	custody common.Address
}

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB, custody common.Address) *GormUoW {
	return &GormUoW{db: db, custody: custody}
}

func (u *GormUoW) repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:    &LoanRepository{db: tx},
		Assets:   &AssetRepository{db: tx},
		Deposits: &DepositRepository{db: tx},
		Claims:   &ClaimRepository{db: tx},
		Funds:    NewLedger(tx, u.custody),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := u.repos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
