package treasury

import (
	"context"
	"time"

	"lenoa-backend/internal/domain/access"
	"lenoa-backend/internal/domain/event"
	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/uow"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Usecase owns protocol fees and the account-level controls of the transfer ledger.
type Usecase struct {
	uow       uow.UnitOfWork
	ledger    funds.Ledger
	operators access.Operators
	collector common.Address
	emitter   event.Emitter
	log       *logrus.Logger
	clock     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, ledger funds.Ledger, operators access.Operators, collector common.Address, emitter event.Emitter, log *logrus.Logger) *Usecase {
	if emitter == nil {
		emitter = event.NoopEmitter{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		uow:       tx,
		ledger:    ledger,
		operators: operators,
		collector: collector,
		emitter:   emitter,
		log:       log,
		clock:     time.Now,
	}
}

func (u *Usecase) SetClock(fn func() time.Time) {
	if fn != nil {
		u.clock = fn
	}
}

type WithdrawalDTO struct {
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
	Collector string `json:"collector"`
}

func (u *Usecase) FeesAccrued(ctx context.Context, asset common.Address) (decimal.Decimal, error) {
	return u.ledger.FeesAccrued(ctx, asset)
}

func (u *Usecase) BalanceOf(ctx context.Context, account, asset common.Address) (decimal.Decimal, error) {
	return u.ledger.BalanceOf(ctx, account, asset)
}

// WithdrawFees pays every accrued fee of asset to the fee collector.
func (u *Usecase) WithdrawFees(ctx context.Context, caller, asset common.Address) (*WithdrawalDTO, error) {
	if err := u.operators.Require(caller); err != nil {
		return nil, err
	}
	var amount decimal.Decimal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		taken, err := r.Funds.TakeFees(ctx, asset)
		if err != nil {
			return err
		}
		amount = taken
		if taken.IsZero() {
			return nil
		}
		return r.Funds.Pay(ctx, u.collector, asset, taken)
	})
	if err != nil {
		return nil, err
	}

	out := &WithdrawalDTO{Asset: asset.Hex(), Amount: amount.String(), Collector: u.collector.Hex()}
	if amount.IsZero() {
		return out, nil
	}
	ev := event.New(event.TypeFeesWithdrawn, 0, u.clock(), map[string]string{
		"asset":     out.Asset,
		"amount":    out.Amount,
		"collector": out.Collector,
		"operator":  caller.Hex(),
	})
	if err := u.emitter.Emit(ctx, ev); err != nil {
		u.log.WithError(err).Warn("treasury: emit withdrawal event")
	}
	u.log.WithFields(logrus.Fields{"asset": out.Asset, "amount": out.Amount}).Info("treasury: fees withdrawn")
	return out, nil
}

// Credit brings outside value into an account.
func (u *Usecase) Credit(ctx context.Context, caller, account, asset common.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := u.operators.Require(caller); err != nil {
		return decimal.Zero, err
	}
	if !amount.IsInteger() {
		return decimal.Zero, funds.ErrInvalidAmount
	}
	var bal decimal.Decimal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Funds.Credit(ctx, account, asset, amount); err != nil {
			return err
		}
		b, err := r.Funds.BalanceOf(ctx, account, asset)
		bal = b
		return err
	})
	return bal, err
}

func (u *Usecase) SetPayoutRejection(ctx context.Context, caller, account common.Address, rejects bool) error {
	if err := u.operators.Require(caller); err != nil {
		return err
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Funds.SetPayoutRejection(ctx, account, rejects)
	})
}
