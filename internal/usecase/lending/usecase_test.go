package lending

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lenoa-backend/internal/domain/access"
	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/domain/uow"
	"lenoa-backend/internal/testutil/assetmock"
	"lenoa-backend/internal/testutil/loanmock"
	"lenoa-backend/internal/testutil/uowmock"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	factoryAddr  = common.HexToAddress("0xfac7")
	borrowerAddr = common.HexToAddress("0xb0")
	lenderAddr   = common.HexToAddress("0xa1")
)

type failures struct{ seen []string }

func (f *failures) ObserveFailure(op, code string) { f.seen = append(f.seen, op+":"+code) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestUsecase(tx uow.UnitOfWork, loans loan.Repository, assets asset.Repository, now time.Time, m FailureObserver) *Usecase {
	return NewUsecase(tx, loans, assets, DefaultConfig(factoryAddr),
		WithClock(func() time.Time { return now }),
		WithLogger(quietLogger()),
		WithMetrics(m),
	)
}

func activeLoan(now time.Time) *loan.Loan {
	return &loan.Loan{
		ID:              3,
		Borrower:        borrowerAddr,
		Lender:          lenderAddr,
		LoanAmount:      decimal.NewFromInt(1000),
		RepaymentAmount: decimal.NewFromInt(1100),
		Status:          loan.StatusActive,
		FundedAt:        now.Unix() - 100,
		Deadline:        now.Unix() + 100,
	}
}

func TestGuards_RejectBeforeTouchingFunds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name string
		l    func() *loan.Loan
		call func(u *Usecase) error
		want error
	}{
		{
			name: "fund active loan",
			l:    func() *loan.Loan { return activeLoan(now) },
			call: func(u *Usecase) error {
				_, err := u.FundLoan(context.Background(), FundLoanInput{Funder: lenderAddr, LoanID: 3})
				return err
			},
			want: loan.ErrLoanNotAvailable,
		},
		{
			name: "fund own loan",
			l: func() *loan.Loan {
				l := activeLoan(now)
				l.Status = loan.StatusPending
				return l
			},
			call: func(u *Usecase) error {
				_, err := u.FundLoan(context.Background(), FundLoanInput{Funder: borrowerAddr, LoanID: 3})
				return err
			},
			want: loan.ErrCannotFundOwnLoan,
		},
		{
			name: "repay by stranger",
			l:    func() *loan.Loan { return activeLoan(now) },
			call: func(u *Usecase) error {
				_, err := u.RepayLoan(context.Background(), RepayLoanInput{Caller: lenderAddr, LoanID: 3})
				return err
			},
			want: loan.ErrOnlyBorrowerCanRepay,
		},
		{
			name: "repay at deadline",
			l: func() *loan.Loan {
				l := activeLoan(now)
				l.Deadline = now.Unix()
				return l
			},
			call: func(u *Usecase) error {
				_, err := u.RepayLoan(context.Background(), RepayLoanInput{Caller: borrowerAddr, LoanID: 3, Value: decimal.NewFromInt(1100)})
				return err
			},
			want: loan.ErrLoanDefaulted,
		},
		{
			name: "repay pending loan",
			l: func() *loan.Loan {
				l := activeLoan(now)
				l.Status = loan.StatusPending
				return l
			},
			call: func(u *Usecase) error {
				_, err := u.RepayLoan(context.Background(), RepayLoanInput{Caller: borrowerAddr, LoanID: 3})
				return err
			},
			want: loan.ErrLoanNotActive,
		},
		{
			name: "liquidate early",
			l:    func() *loan.Loan { return activeLoan(now) },
			call: func(u *Usecase) error {
				_, err := u.LiquidateLoan(context.Background(), LiquidateLoanInput{Caller: lenderAddr, LoanID: 3})
				return err
			},
			want: loan.ErrLoanNotDefaultedYet,
		},
		{
			name: "cancel active",
			l:    func() *loan.Loan { return activeLoan(now) },
			call: func(u *Usecase) error {
				_, err := u.CancelLoan(context.Background(), CancelLoanInput{Caller: borrowerAddr, LoanID: 3})
				return err
			},
			want: loan.ErrLoanNotPending,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// zero Repos: any attempt to move funds would panic on a nil ledger
			tx := uowmock.New().WithLoan(uow.Repos{}, tc.l())
			obs := &failures{}
			u := newTestUsecase(tx, &loanmock.Repo{}, &assetmock.Repo{}, now, obs)

			err := tc.call(u)
			require.ErrorIs(t, err, tc.want)
			require.Len(t, obs.seen, 1)
			require.Contains(t, obs.seen[0], ErrorCode(tc.want))
		})
	}
}

func TestCreateLoanRequest_ZeroBorrower(t *testing.T) {
	tx := uowmock.New().WithWithinTx(func(ctx context.Context, fn func(uow.Repos) error) error {
		return fn(uow.Repos{})
	})
	u := newTestUsecase(tx, &loanmock.Repo{}, &assetmock.Repo{}, time.Now(), nil)

	_, err := u.CreateLoanRequest(context.Background(), CreateLoanInput{})
	require.ErrorIs(t, err, loan.ErrInvalidAccount)
}

func TestGetLoan_MapsRecordNotFound(t *testing.T) {
	loans := &loanmock.Repo{GetByIDFn: func(_ context.Context, id uint64) (*loan.Loan, error) {
		if id == 1 {
			return &loan.Loan{ID: 1, Borrower: borrowerAddr, Status: loan.StatusPending}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}}
	u := newTestUsecase(uowmock.New(), loans, &assetmock.Repo{}, time.Now(), nil)

	got, err := u.GetLoan(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "pending", got.Status)
	require.Empty(t, got.Lender)

	_, err = u.GetLoan(context.Background(), 2)
	require.ErrorIs(t, err, loan.ErrNotFound)
}

func TestIsTokenSupported(t *testing.T) {
	dai := common.HexToAddress("0xda1")
	off := common.HexToAddress("0x0ff")
	boom := errors.New("db down")
	assets := &assetmock.Repo{GetFn: func(_ context.Context, addr common.Address) (*asset.SupportedAsset, error) {
		switch addr {
		case dai:
			return &asset.SupportedAsset{Address: dai, Enabled: true}, nil
		case off:
			return &asset.SupportedAsset{Address: off}, nil
		case asset.Native:
			return nil, boom
		}
		return nil, gorm.ErrRecordNotFound
	}}
	u := newTestUsecase(uowmock.New(), &loanmock.Repo{}, assets, time.Now(), nil)
	ctx := context.Background()

	ok, err := u.IsTokenSupported(ctx, dai)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = u.IsTokenSupported(ctx, off)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = u.IsTokenSupported(ctx, common.HexToAddress("0x1"))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = u.IsTokenSupported(ctx, asset.Native)
	require.ErrorIs(t, err, boom)
}

func TestListLoans_ClampsPaging(t *testing.T) {
	var seen loan.Filter
	loans := &loanmock.Repo{ListFn: func(_ context.Context, f loan.Filter) ([]loan.Loan, int64, error) {
		seen = f
		return nil, 0, nil
	}}
	u := newTestUsecase(uowmock.New(), loans, &assetmock.Repo{}, time.Now(), nil)
	ctx := context.Background()

	page, err := u.ListLoans(ctx, loan.Filter{Offset: -5})
	require.NoError(t, err)
	require.Equal(t, defaultPageSize, seen.Limit)
	require.Equal(t, 0, seen.Offset)
	require.NotNil(t, page.Items)

	_, err = u.ListLoans(ctx, loan.Filter{Limit: 10_000})
	require.NoError(t, err)
	require.Equal(t, maxPageSize, seen.Limit)

	_, err = u.ListLoans(ctx, loan.Filter{Status: "open"})
	require.ErrorIs(t, err, loan.ErrInvalidStatus)
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{loan.ErrLoanDefaulted, "LoanDefaulted"},
		{fmt.Errorf("repay: pay holder: %w", funds.ErrPayoutFailed), "PayoutFailed"},
		{fmt.Errorf("%w: 0x0", loan.ErrUnsupportedAsset), "UnsupportedAsset"},
		{claim.ErrNotFound, "NotFound"},
		{access.ErrOnlyFactory, "OnlyFactoryCanCall"},
		{errors.New("boom"), CodeInternal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ErrorCode(tc.err))
	}
}
