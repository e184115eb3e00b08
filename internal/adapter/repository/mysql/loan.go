package mysql

import (
	"context"
	"errors"

	loanDomain "lenoa-backend/internal/domain/loan"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const loanSequence = "loans"

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) NextID(ctx context.Context) (uint64, error) {
	var seq loanDomain.Sequence
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", loanSequence).
		First(&seq).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = loanDomain.Sequence{Name: loanSequence, Next: 1}
		if err := r.db.WithContext(ctx).Create(&seq).Error; err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	}

	id := seq.Next
	err = r.db.WithContext(ctx).
		Model(&loanDomain.Sequence{}).
		Where("name = ?", loanSequence).
		Update("next_value", id+1).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *LoanRepository) PeekNextID(ctx context.Context) (uint64, error) {
	var seq loanDomain.Sequence
	err := r.db.WithContext(ctx).Where("name = ?", loanSequence).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	return seq.Next, err
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) AppendIndex(ctx context.Context, account common.Address, role loanDomain.Role, loanID uint64) error {
	return r.db.WithContext(ctx).Create(&loanDomain.AccountLoan{Account: account, Role: role, LoanID: loanID}).Error
}

func (r *LoanRepository) ListByAccount(ctx context.Context, account common.Address, role loanDomain.Role) ([]loanDomain.Loan, error) {
	out := []loanDomain.Loan{}
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("loans.*").
		Joins("JOIN account_loans ON account_loans.loan_id = loans.id").
		Where("account_loans.account = ? AND account_loans.role = ?", account, role).
		Order("account_loans.seq ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListDue(ctx context.Context, now int64, afterID uint64, limit int) ([]loanDomain.Loan, error) {
	out := []loanDomain.Loan{}
	q := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ? AND id > ?", loanDomain.StatusActive, now, afterID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func byStatus(s loanDomain.Status) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s == "" {
			return db
		}
		return db.Where("status = ?", s)
	}
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.Filter) ([]loanDomain.Loan, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Scopes(byStatus(f.Status)).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	out := []loanDomain.Loan{}
	q := r.db.WithContext(ctx).Scopes(byStatus(f.Status)).Order("id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
