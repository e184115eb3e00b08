package keeper

import (
	"context"
	"errors"
	"io"
	"testing"

	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/usecase/lending"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var keeperAccount = common.HexToAddress("0x00000000000000000000000000000000000000cc")

type fakeLedger struct {
	ListLiquidatableFn func(ctx context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error)
	LiquidateLoanFn    func(ctx context.Context, in lending.LiquidateLoanInput) (*lending.SettlementDTO, error)
}

func (f *fakeLedger) ListLiquidatable(ctx context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error) {
	return f.ListLiquidatableFn(ctx, afterID, limit)
}

func (f *fakeLedger) LiquidateLoan(ctx context.Context, in lending.LiquidateLoanInput) (*lending.SettlementDTO, error) {
	return f.LiquidateLoanFn(ctx, in)
}

type outcomes map[string]int

func (o outcomes) ObserveLiquidation(outcome string) { o[outcome]++ }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	var calls []uint64
	ledger := &fakeLedger{
		ListLiquidatableFn: func(_ context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error) {
			require.Equal(t, 10, limit)
			require.Zero(t, afterID)
			return []lending.LoanDTO{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, nil
		},
		LiquidateLoanFn: func(_ context.Context, in lending.LiquidateLoanInput) (*lending.SettlementDTO, error) {
			require.Equal(t, keeperAccount, in.Caller)
			calls = append(calls, in.LoanID)
			switch in.LoanID {
			case 2:
				return nil, funds.ErrPayoutFailed
			case 3:
				return nil, loan.ErrLoanNotActive
			}
			return &lending.SettlementDTO{Payee: "0xholder", Amount: "1"}, nil
		},
	}
	obs := outcomes{}
	k := NewLiquidator(ledger, keeperAccount, 10, obs, quietLogger())

	sum, err := k.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3, 4}, calls)
	require.Equal(t, Summary{Liquidated: 2, Skipped: 1, Failed: 1}, sum)
	require.Equal(t, outcomes{"liquidated": 2, "skipped": 1, "failed": 1}, obs)
}

// overdue mimics ListDue over a fixed set of overdue ids.
func overdue(ids ...uint64) func(context.Context, uint64, int) ([]lending.LoanDTO, error) {
	return func(_ context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error) {
		var out []lending.LoanDTO
		for _, id := range ids {
			if id > afterID && len(out) < limit {
				out = append(out, lending.LoanDTO{ID: id})
			}
		}
		return out, nil
	}
}

func TestSweep_FailingPageDoesNotStarveLaterLoans(t *testing.T) {
	var calls []uint64
	ledger := &fakeLedger{
		ListLiquidatableFn: overdue(1, 2, 3, 4, 5),
		LiquidateLoanFn: func(_ context.Context, in lending.LiquidateLoanInput) (*lending.SettlementDTO, error) {
			calls = append(calls, in.LoanID)
			if in.LoanID <= 2 {
				// the holder keeps rejecting the payout, so these stay active
				return nil, funds.ErrPayoutFailed
			}
			return &lending.SettlementDTO{}, nil
		},
	}
	k := NewLiquidator(ledger, keeperAccount, 2, nil, quietLogger())

	sum, err := k.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, calls)
	require.Equal(t, Summary{Liquidated: 3, Failed: 2}, sum)
}

func TestSweep_StopsAfterShortPage(t *testing.T) {
	var cursors []uint64
	list := overdue(1, 2, 3, 4)
	ledger := &fakeLedger{
		ListLiquidatableFn: func(ctx context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error) {
			cursors = append(cursors, afterID)
			return list(ctx, afterID, limit)
		},
		LiquidateLoanFn: func(context.Context, lending.LiquidateLoanInput) (*lending.SettlementDTO, error) {
			return &lending.SettlementDTO{}, nil
		},
	}
	k := NewLiquidator(ledger, keeperAccount, 2, nil, quietLogger())

	sum, err := k.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, sum.Liquidated)
	require.Equal(t, []uint64{0, 2, 4}, cursors)
}

func TestSweep_ListErrorIsReturned(t *testing.T) {
	boom := errors.New("db down")
	ledger := &fakeLedger{
		ListLiquidatableFn: func(context.Context, uint64, int) ([]lending.LoanDTO, error) { return nil, boom },
	}
	k := NewLiquidator(ledger, keeperAccount, 0, nil, quietLogger())
	_, err := k.Sweep(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, DefaultBatchSize, k.batch)
}

func TestSweep_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ledger := &fakeLedger{
		ListLiquidatableFn: func(context.Context, uint64, int) ([]lending.LoanDTO, error) {
			return []lending.LoanDTO{{ID: 1}, {ID: 2}}, nil
		},
		LiquidateLoanFn: func(context.Context, lending.LiquidateLoanInput) (*lending.SettlementDTO, error) {
			cancel()
			return &lending.SettlementDTO{}, nil
		},
	}
	k := NewLiquidator(ledger, keeperAccount, 5, nil, quietLogger())
	sum, err := k.Sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, sum.Liquidated)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	k := NewLiquidator(&fakeLedger{}, keeperAccount, 1, nil, quietLogger())
	require.Error(t, k.Start("not a schedule"))
	k.Stop()
}

func TestStartStop(t *testing.T) {
	ledger := &fakeLedger{
		ListLiquidatableFn: func(context.Context, uint64, int) ([]lending.LoanDTO, error) { return nil, nil },
	}
	k := NewLiquidator(ledger, keeperAccount, 1, nil, quietLogger())
	require.NoError(t, k.Start("@every 1h"))
	k.Stop()
}
