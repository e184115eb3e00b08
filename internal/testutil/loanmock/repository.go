package loanmock

import (
	"context"

	domain "lenoa-backend/internal/domain/loan"

	"github.com/ethereum/go-ethereum/common"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads default to context.Canceled, writes to a nil error.
type Repo struct {
	NextIDFn           func(ctx context.Context) (uint64, error)
	PeekNextIDFn       func(ctx context.Context) (uint64, error)
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn             func(ctx context.Context, l *domain.Loan) error
	AppendIndexFn      func(ctx context.Context, account common.Address, role domain.Role, loanID uint64) error
	ListByAccountFn    func(ctx context.Context, account common.Address, role domain.Role) ([]domain.Loan, error)
	ListDueFn          func(ctx context.Context, now int64, afterID uint64, limit int) ([]domain.Loan, error)
	ListFn             func(ctx context.Context, f domain.Filter) ([]domain.Loan, int64, error)
}

func (m *Repo) NextID(ctx context.Context) (uint64, error) {
	if m.NextIDFn != nil {
		return m.NextIDFn(ctx)
	}
	return 0, context.Canceled
}

func (m *Repo) PeekNextID(ctx context.Context) (uint64, error) {
	if m.PeekNextIDFn != nil {
		return m.PeekNextIDFn(ctx)
	}
	return 0, context.Canceled
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) AppendIndex(ctx context.Context, account common.Address, role domain.Role, loanID uint64) error {
	if m.AppendIndexFn != nil {
		return m.AppendIndexFn(ctx, account, role, loanID)
	}
	return nil
}

func (m *Repo) ListByAccount(ctx context.Context, account common.Address, role domain.Role) ([]domain.Loan, error) {
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, account, role)
	}
	return nil, context.Canceled
}

func (m *Repo) ListDue(ctx context.Context, now int64, afterID uint64, limit int) ([]domain.Loan, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, now, afterID, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Loan, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, context.Canceled
}
