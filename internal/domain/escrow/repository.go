package escrow

import "context"

type Repository interface {
	Create(ctx context.Context, d *Deposit) error
	GetByLoanID(ctx context.Context, loanID uint64) (*Deposit, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*Deposit, error)
	Save(ctx context.Context, d *Deposit) error
}
