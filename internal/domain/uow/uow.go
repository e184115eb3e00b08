package uow

import (
	"context"

	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/loan"
)

// Repos are bound to a single transaction.
type Repos struct {
	Loans    loan.Repository
	Assets   asset.Repository
	Deposits escrow.Repository
	Claims   claim.Repository
	Funds    funds.Ledger
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
