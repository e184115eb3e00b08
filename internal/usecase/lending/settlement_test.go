package lending_test

import (
	"context"
	"testing"
	"time"

	"lenoa-backend/internal/adapter/repository/mysql"
	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/domain/uow"
	"lenoa-backend/internal/usecase/lending"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// claimReads records how the claim registry reads tokens inside a loan tx.
type claimReads struct {
	claim.Repository
	plain, locked []uint64
}

func (c *claimReads) GetByID(ctx context.Context, id uint64) (*claim.Token, error) {
	c.plain = append(c.plain, id)
	return c.Repository.GetByID(ctx, id)
}

func (c *claimReads) GetByIDForUpdate(ctx context.Context, id uint64) (*claim.Token, error) {
	c.locked = append(c.locked, id)
	return c.Repository.GetByIDForUpdate(ctx, id)
}

type recordingUoW struct {
	uow.UnitOfWork
	reads *claimReads
}

func (u recordingUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.UnitOfWork.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		u.reads.Repository = r.Claims
		r.Claims = u.reads
		return fn(r, l)
	})
}

func (e *env) recordingLedger() (*lending.Usecase, *claimReads) {
	reads := &claimReads{}
	tx := recordingUoW{UnitOfWork: mysql.NewGormUoW(e.db, custody), reads: reads}
	uc := lending.NewUsecase(tx, mysql.NewLoanRepository(e.db), mysql.NewAssetRepository(e.db), lending.DefaultConfig(factory),
		lending.WithClock(func() time.Time { return e.now }))
	return uc, reads
}

func TestSettlement_RepayLocksHolderRow(t *testing.T) {
	e := newEnv(t)
	l := e.openEthLoan()
	e.fund(l.ID)
	_, err := e.claims.Transfer(e.ctx, lender, lender, holder, l.ID)
	require.NoError(t, err)

	uc, reads := e.recordingLedger()
	settled, err := uc.RepayLoan(e.ctx, lending.RepayLoanInput{Caller: borrower, LoanID: l.ID, Value: eth("1.1")})
	require.NoError(t, err)
	require.Equal(t, holder.Hex(), settled.Payee)
	require.Empty(t, reads.plain, "the payee must not come from an unlocked read")
	require.Contains(t, reads.locked, l.ID)
}

func TestSettlement_LiquidateLocksHolderRow(t *testing.T) {
	e := newEnv(t)
	l := e.openEthLoan()
	e.fund(l.ID)
	e.advance(31 * day)

	uc, reads := e.recordingLedger()
	settled, err := uc.LiquidateLoan(e.ctx, lending.LiquidateLoanInput{Caller: keeper, LoanID: l.ID})
	require.NoError(t, err)
	require.Equal(t, lender.Hex(), settled.Payee)
	require.Empty(t, reads.plain)
	require.Equal(t, []uint64{l.ID}, reads.locked)
}

func TestCreateLoanRequest_RejectsInterestThatRoundsToZero(t *testing.T) {
	e := newEnv(t)
	tst := common.HexToAddress("0x00000000000000000000000000000000000007e5")
	require.NoError(t, mysql.NewAssetRepository(e.db).Upsert(e.ctx, &asset.SupportedAsset{
		Address:   tst,
		Symbol:    "TST",
		MinAmount: decimal.NewFromInt(1),
		MaxAmount: decimal.NewFromInt(1_000_000),
		Enabled:   true,
	}))
	in := lending.CreateLoanInput{
		Borrower:         borrower,
		LoanAsset:        tst,
		InterestRateBps:  100,
		DurationDays:     7,
		CollateralAsset:  native,
		CollateralAmount: eth("0.1"),
		Value:            eth("0.1"),
	}

	in.LoanAmount = decimal.NewFromInt(99)
	_, err := e.uc.CreateLoanRequest(e.ctx, in)
	require.ErrorIs(t, err, loan.ErrInvalidAmount)
	require.Contains(t, err.Error(), "interest")

	in.LoanAmount = decimal.NewFromInt(100)
	l, err := e.uc.CreateLoanRequest(e.ctx, in)
	require.NoError(t, err)
	require.Equal(t, "101", l.RepaymentAmount)
}

func TestGetCollateral_TracksEscrowOutcome(t *testing.T) {
	e := newEnv(t)

	_, err := e.uc.GetCollateral(e.ctx, 42)
	require.ErrorIs(t, err, escrow.ErrNotFound)
	require.Equal(t, "NotFound", lending.ErrorCode(err))

	held := e.openEthLoan()
	c, err := e.uc.GetCollateral(e.ctx, held.ID)
	require.NoError(t, err)
	require.False(t, c.Released)
	require.Equal(t, eth("0.5").String(), c.Amount)
	require.Equal(t, borrower.Hex(), c.Depositor)
	require.Empty(t, c.Recipient)

	e.fund(held.ID)
	e.advance(31 * day)
	_, err = e.uc.LiquidateLoan(e.ctx, lending.LiquidateLoanInput{Caller: keeper, LoanID: held.ID})
	require.NoError(t, err)
	c, err = e.uc.GetCollateral(e.ctx, held.ID)
	require.NoError(t, err)
	require.True(t, c.Released)
	require.Equal(t, string(escrow.OutcomeLiquidated), c.Outcome)
	require.Equal(t, lender.Hex(), c.Recipient)
	require.Equal(t, e.now.Unix(), c.ReleasedAt)
}
