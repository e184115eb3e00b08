package lending

import (
	"context"
	"errors"
	"fmt"

	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/domain/uow"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func supportedAsset(ctx context.Context, repo asset.Repository, addr common.Address) (*asset.SupportedAsset, error) {
	a, err := repo.Get(ctx, addr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", loan.ErrUnsupportedAsset, addr.Hex())
	}
	if err != nil {
		return nil, err
	}
	if !a.Enabled {
		return nil, fmt.Errorf("%w: %s disabled", loan.ErrUnsupportedAsset, addr.Hex())
	}
	return a, nil
}

// valueMatches applies the attached-value rule: native transfers carry the
// amount exactly, fungible transfers carry nothing.
func valueMatches(assetAddr common.Address, amount, value decimal.Decimal) bool {
	if asset.IsNative(assetAddr) {
		return value.Equal(amount)
	}
	return value.IsZero()
}

// transition moves l to next and persists it. Entering a terminal status
// stamps SettledAt.
func transition(ctx context.Context, r uow.Repos, l *loan.Loan, next loan.Status, now int64) error {
	if !l.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s to %s", loan.ErrInvalidTransition, l.Status, next)
	}
	l.Status = next
	if next.IsTerminal() {
		l.SettledAt = now
	}
	return r.Loans.Save(ctx, l)
}

func (u *Usecase) CreateLoanRequest(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	at := u.clock()
	now := at.Unix()
	var l *loan.Loan

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if in.Borrower == (common.Address{}) {
			return loan.ErrInvalidAccount
		}
		la, err := supportedAsset(ctx, r.Assets, in.LoanAsset)
		if err != nil {
			return err
		}
		if !in.LoanAmount.IsInteger() {
			return fmt.Errorf("%w: amount must be whole base units", loan.ErrInvalidAmount)
		}
		if !la.Within(in.LoanAmount) {
			return fmt.Errorf("%w: amount outside %s..%s", loan.ErrInvalidAmount, la.MinAmount, la.MaxAmount)
		}
		if in.InterestRateBps == 0 || in.InterestRateBps > MaxInterestRateBps {
			return loan.ErrInvalidRate
		}
		repayment := RepaymentAmount(in.LoanAmount, in.InterestRateBps)
		if !repayment.GreaterThan(in.LoanAmount) {
			return fmt.Errorf("%w: amount too small to accrue interest", loan.ErrInvalidAmount)
		}
		if in.DurationDays < MinDurationDays || in.DurationDays > MaxDurationDays {
			return loan.ErrInvalidDuration
		}
		if !in.CollateralAmount.IsPositive() {
			return loan.ErrCollateralRequired
		}
		if !in.CollateralAmount.IsInteger() {
			return fmt.Errorf("%w: collateral must be whole base units", loan.ErrInvalidAmount)
		}
		if _, err := supportedAsset(ctx, r.Assets, in.CollateralAsset); err != nil {
			return err
		}
		if !valueMatches(in.CollateralAsset, in.CollateralAmount, in.Value) {
			return loan.ErrValueMismatch
		}

		id, err := r.Loans.NextID(ctx)
		if err != nil {
			return err
		}
		l = &loan.Loan{
			ID:               id,
			Borrower:         in.Borrower,
			LoanAsset:        in.LoanAsset,
			LoanAmount:       in.LoanAmount,
			InterestRateBps:  in.InterestRateBps,
			RepaymentAmount:  repayment,
			CollateralAsset:  in.CollateralAsset,
			CollateralAmount: in.CollateralAmount,
			DurationSeconds:  int64(in.DurationDays) * SecondsPerDay,
			CreatedAt:        now,
			Status:           loan.StatusPending,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		err = u.vault(r, now).Deposit(ctx, u.cfg.Factory, id, in.CollateralAsset, in.CollateralAmount, in.Borrower)
		if err != nil {
			return err
		}
		return r.Loans.AppendIndex(ctx, in.Borrower, loan.RoleBorrower, id)
	})
	if err != nil {
		return nil, u.finish(ctx, "create", err)
	}
	_ = u.finish(ctx, "create", nil, requestCreatedEvent(l, at))
	return toDTO(l), nil
}

func (u *Usecase) FundLoan(ctx context.Context, in FundLoanInput) (*LoanDTO, error) {
	at := u.clock()
	now := at.Unix()
	var (
		out *loan.Loan
		fee decimal.Decimal
	)

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusPending {
			return loan.ErrLoanNotAvailable
		}
		if in.Funder == l.Borrower {
			return loan.ErrCannotFundOwnLoan
		}
		if in.Funder == (common.Address{}) {
			return loan.ErrInvalidAccount
		}
		if !valueMatches(l.LoanAsset, l.LoanAmount, in.Value) {
			return loan.ErrValueMismatch
		}

		if err := r.Funds.Pull(ctx, in.Funder, l.LoanAsset, l.LoanAmount); err != nil {
			return fmt.Errorf("fund: pull principal: %w", err)
		}
		fee = OriginationFee(l.LoanAmount, u.cfg.OriginationFeeBps)
		if err := r.Funds.AccrueFee(ctx, l.LoanAsset, fee); err != nil {
			return err
		}
		if err := r.Funds.Pay(ctx, l.Borrower, l.LoanAsset, l.LoanAmount.Sub(fee)); err != nil {
			return fmt.Errorf("fund: pay borrower: %w", err)
		}

		l.Lender = in.Funder
		l.FundedAt = now
		l.Deadline = now + l.DurationSeconds
		if err := transition(ctx, r, l, loan.StatusActive, now); err != nil {
			return err
		}
		if _, err := u.registry(r, now).Mint(ctx, u.cfg.Factory, in.Funder, l.ID); err != nil {
			return err
		}
		if err := r.Loans.AppendIndex(ctx, in.Funder, loan.RoleLender, l.ID); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, u.finish(ctx, "fund", err)
	}
	_ = u.finish(ctx, "fund", nil, fundedEvent(out, fee, at))
	return toDTO(out), nil
}

func (u *Usecase) RepayLoan(ctx context.Context, in RepayLoanInput) (*SettlementDTO, error) {
	at := u.clock()
	now := at.Unix()
	var (
		out   *loan.Loan
		payee common.Address
		paid  decimal.Decimal
		fee   decimal.Decimal
	)

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status == loan.StatusDefaulted {
			return loan.ErrLoanDefaulted
		}
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		if in.Caller != l.Borrower {
			return loan.ErrOnlyBorrowerCanRepay
		}
		if now >= l.Deadline {
			return loan.ErrLoanDefaulted
		}
		if !valueMatches(l.LoanAsset, l.RepaymentAmount, in.Value) {
			return loan.ErrIncorrectRepaymentAmount
		}

		if err := r.Funds.Pull(ctx, l.Borrower, l.LoanAsset, l.RepaymentAmount); err != nil {
			return fmt.Errorf("repay: pull repayment: %w", err)
		}
		reg := u.registry(r, now)
		holder, err := reg.LockOwner(ctx, l.ID)
		if err != nil {
			return err
		}
		fee = InterestFee(l.RepaymentAmount, l.LoanAmount, u.cfg.InterestFeeBps)
		if err := r.Funds.AccrueFee(ctx, l.LoanAsset, fee); err != nil {
			return err
		}
		paid = l.RepaymentAmount.Sub(fee)
		if err := r.Funds.Pay(ctx, holder, l.LoanAsset, paid); err != nil {
			return fmt.Errorf("repay: pay holder: %w", err)
		}
		if _, err := u.vault(r, now).Release(ctx, u.cfg.Factory, l.ID); err != nil {
			return err
		}
		if err := reg.Burn(ctx, u.cfg.Factory, l.ID); err != nil {
			return err
		}

		if err := transition(ctx, r, l, loan.StatusRepaid, now); err != nil {
			return err
		}
		out, payee = l, holder
		return nil
	})
	if err != nil {
		return nil, u.finish(ctx, "repay", err)
	}
	_ = u.finish(ctx, "repay", nil, repaidEvent(out, payee, paid, fee, at))
	return &SettlementDTO{
		Loan:   toDTO(out),
		Payee:  payee.Hex(),
		Asset:  out.LoanAsset.Hex(),
		Amount: paid.String(),
		Fee:    fee.String(),
	}, nil
}

// LiquidateLoan is open to any caller once the deadline has passed.
func (u *Usecase) LiquidateLoan(ctx context.Context, in LiquidateLoanInput) (*SettlementDTO, error) {
	at := u.clock()
	now := at.Unix()
	var (
		out   *loan.Loan
		payee common.Address
	)

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrLoanNotActive
		}
		if now < l.Deadline {
			return loan.ErrLoanNotDefaultedYet
		}

		holder, err := u.registry(r, now).LockOwner(ctx, l.ID)
		if err != nil {
			return err
		}
		if _, err := u.vault(r, now).Liquidate(ctx, u.cfg.Factory, l.ID, holder); err != nil {
			return err
		}

		if err := transition(ctx, r, l, loan.StatusDefaulted, now); err != nil {
			return err
		}
		out, payee = l, holder
		return nil
	})
	if err != nil {
		return nil, u.finish(ctx, "liquidate", err)
	}
	_ = u.finish(ctx, "liquidate", nil, defaultedEvent(out, payee, in.Caller, at))
	return &SettlementDTO{
		Loan:   toDTO(out),
		Payee:  payee.Hex(),
		Asset:  out.CollateralAsset.Hex(),
		Amount: out.CollateralAmount.String(),
		Fee:    decimal.Zero.String(),
	}, nil
}

func (u *Usecase) CancelLoan(ctx context.Context, in CancelLoanInput) (*LoanDTO, error) {
	at := u.clock()
	now := at.Unix()
	var out *loan.Loan

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusPending {
			return loan.ErrLoanNotPending
		}
		if in.Caller != l.Borrower {
			return loan.ErrOnlyBorrowerCancel
		}
		if _, err := u.vault(r, now).Release(ctx, u.cfg.Factory, l.ID); err != nil {
			return err
		}

		if err := transition(ctx, r, l, loan.StatusCancelled, now); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, u.finish(ctx, "cancel", err)
	}
	_ = u.finish(ctx, "cancel", nil, cancelledEvent(out, at))
	return toDTO(out), nil
}
