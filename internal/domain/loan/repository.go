package loan

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type Repository interface {
	// NextID reserves the next loan id. Ids start at 1.
	NextID(ctx context.Context) (uint64, error)
	PeekNextID(ctx context.Context) (uint64, error)

	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error

	AppendIndex(ctx context.Context, account common.Address, role Role, loanID uint64) error
	ListByAccount(ctx context.Context, account common.Address, role Role) ([]Loan, error)

	// ListDue returns active loans whose deadline is at or before now,
	// in id order starting after afterID.
	ListDue(ctx context.Context, now int64, afterID uint64, limit int) ([]Loan, error)
	List(ctx context.Context, f Filter) ([]Loan, int64, error)
}
