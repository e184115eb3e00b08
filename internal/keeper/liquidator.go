// Package keeper settles defaulted loans on a schedule.
package keeper

import (
	"context"
	"errors"
	"time"

	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/usecase/lending"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSchedule  = "@every 1m"
	DefaultBatchSize = 100
	sweepTimeout     = 30 * time.Second
)

// Ledger is the part of the lending engine the keeper drives.
type Ledger interface {
	ListLiquidatable(ctx context.Context, afterID uint64, limit int) ([]lending.LoanDTO, error)
	LiquidateLoan(ctx context.Context, in lending.LiquidateLoanInput) (*lending.SettlementDTO, error)
}

type Observer interface {
	ObserveLiquidation(outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveLiquidation(string) {}

type Liquidator struct {
	ledger  Ledger
	account common.Address
	batch   int
	obs     Observer
	log     *logrus.Logger
	cron    *cron.Cron
}

// Summary counts the outcomes of one sweep.
type Summary struct {
	Liquidated int
	Skipped    int
	Failed     int
}

func NewLiquidator(ledger Ledger, account common.Address, batch int, obs Observer, log *logrus.Logger) *Liquidator {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if obs == nil {
		obs = noopObserver{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Liquidator{ledger: ledger, account: account, batch: batch, obs: obs, log: log}
}

// Sweep liquidates every loan past its deadline, paging through them in id
// order. A failure on one loan does not stop the others, and a page full of
// failures does not hide the loans behind it.
func (k *Liquidator) Sweep(ctx context.Context) (Summary, error) {
	var (
		sum    Summary
		cursor uint64
	)
	for {
		due, err := k.ledger.ListLiquidatable(ctx, cursor, k.batch)
		if err != nil {
			return sum, err
		}
		for _, l := range due {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			k.liquidate(ctx, l.ID, &sum)
			cursor = l.ID
		}
		if len(due) < k.batch {
			return sum, nil
		}
	}
}

func (k *Liquidator) liquidate(ctx context.Context, loanID uint64, sum *Summary) {
	entry := k.log.WithField("loan_id", loanID)
	res, err := k.ledger.LiquidateLoan(ctx, lending.LiquidateLoanInput{Caller: k.account, LoanID: loanID})
	switch {
	case err == nil:
		sum.Liquidated++
		k.obs.ObserveLiquidation("liquidated")
		entry.WithFields(logrus.Fields{"payee": res.Payee, "amount": res.Amount}).Info("keeper: loan liquidated")
	case errors.Is(err, loan.ErrLoanNotActive), errors.Is(err, loan.ErrLoanNotDefaultedYet):
		// settled by someone else between the listing and the call
		sum.Skipped++
		k.obs.ObserveLiquidation("skipped")
		entry.WithError(err).Debug("keeper: loan skipped")
	default:
		sum.Failed++
		k.obs.ObserveLiquidation("failed")
		entry.WithError(err).WithField("code", lending.ErrorCode(err)).Warn("keeper: liquidation failed")
	}
}

// Start runs Sweep on the cron schedule. Overlapping runs are skipped.
func (k *Liquidator) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	logger := cron.PrintfLogger(k.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, k.run); err != nil {
		return err
	}
	k.cron = c
	c.Start()
	k.log.WithFields(logrus.Fields{"schedule": schedule, "account": k.account.Hex()}).Info("keeper: started")
	return nil
}

func (k *Liquidator) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	sum, err := k.Sweep(ctx)
	if err != nil {
		k.log.WithError(err).Error("keeper: sweep")
		return
	}
	if sum != (Summary{}) {
		k.log.WithFields(logrus.Fields{
			"liquidated": sum.Liquidated,
			"skipped":    sum.Skipped,
			"failed":     sum.Failed,
		}).Info("keeper: sweep done")
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (k *Liquidator) Stop() {
	if k.cron == nil {
		return
	}
	<-k.cron.Stop().Done()
	k.log.Info("keeper: stopped")
}
