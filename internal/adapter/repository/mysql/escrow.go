package mysql

import (
	"context"

	escrowDomain "lenoa-backend/internal/domain/escrow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepositRepository struct{ db *gorm.DB }

func NewDepositRepository(db *gorm.DB) *DepositRepository { return &DepositRepository{db: db} }

func (r *DepositRepository) Create(ctx context.Context, d *escrowDomain.Deposit) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepositRepository) Save(ctx context.Context, d *escrowDomain.Deposit) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DepositRepository) GetByLoanID(ctx context.Context, loanID uint64) (*escrowDomain.Deposit, error) {
	var out escrowDomain.Deposit
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DepositRepository) GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*escrowDomain.Deposit, error) {
	var out escrowDomain.Deposit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
