package lending

import (
	"context"
	"errors"
	"time"

	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/event"
	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/domain/uow"
	claimuc "lenoa-backend/internal/usecase/claim"
	escrowuc "lenoa-backend/internal/usecase/escrow"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Config struct {
	// Factory is the ledger's own identity towards the escrow and the claim registry.
	Factory           common.Address
	OriginationFeeBps int64
	InterestFeeBps    int64
	ClaimBaseURI      string
}

func DefaultConfig(factory common.Address) Config {
	return Config{
		Factory:           factory,
		OriginationFeeBps: OriginationFeeBps,
		InterestFeeBps:    InterestFeeBps,
		ClaimBaseURI:      claimuc.DefaultBaseURI,
	}
}

type FailureObserver interface {
	ObserveFailure(operation, code string)
}

type noopObserver struct{}

func (noopObserver) ObserveFailure(string, string) {}

// Usecase is the loan ledger: it owns every lifecycle transition and is the
// only caller of the escrow vault and the claim registry's mint and burn.
type Usecase struct {
	uow     uow.UnitOfWork
	loans   loan.Repository
	assets  asset.Repository
	cfg     Config
	emitter event.Emitter
	metrics FailureObserver
	log     *logrus.Logger
	clock   func() time.Time
}

type Option func(*Usecase)

func WithEmitter(e event.Emitter) Option {
	return func(u *Usecase) {
		if e != nil {
			u.emitter = e
		}
	}
}

func WithMetrics(m FailureObserver) Option {
	return func(u *Usecase) {
		if m != nil {
			u.metrics = m
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(u *Usecase) {
		if l != nil {
			u.log = l
		}
	}
}

func WithClock(fn func() time.Time) Option {
	return func(u *Usecase) {
		if fn != nil {
			u.clock = fn
		}
	}
}

func NewUsecase(tx uow.UnitOfWork, loans loan.Repository, assets asset.Repository, cfg Config, opts ...Option) *Usecase {
	u := &Usecase{
		uow:     tx,
		loans:   loans,
		assets:  assets,
		cfg:     cfg,
		emitter: event.NoopEmitter{},
		metrics: noopObserver{},
		log:     logrus.StandardLogger(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) vault(r uow.Repos, now int64) *escrowuc.Vault {
	return escrowuc.NewVault(r.Deposits, r.Funds, u.cfg.Factory, func() int64 { return now })
}

func (u *Usecase) registry(r uow.Repos, now int64) *claimuc.Registry {
	return claimuc.NewRegistry(r.Claims, claimuc.Options{
		Factory: u.cfg.Factory,
		BaseURI: u.cfg.ClaimBaseURI,
		Now:     func() int64 { return now },
	})
}

// finish records a failed operation or publishes the events of a committed one.
func (u *Usecase) finish(ctx context.Context, op string, err error, events ...event.Event) error {
	if err != nil {
		code := ErrorCode(err)
		u.metrics.ObserveFailure(op, code)
		entry := u.log.WithError(err).WithFields(logrus.Fields{"operation": op, "code": code})
		if code == CodeInternal {
			entry.Error("lending: operation failed")
		} else {
			entry.Debug("lending: operation rejected")
		}
		return err
	}
	for _, ev := range events {
		if emitErr := u.emitter.Emit(ctx, ev); emitErr != nil {
			u.log.WithError(emitErr).WithFields(logrus.Fields{
				"event":   ev.Type,
				"loan_id": ev.LoanID,
			}).Warn("lending: emit event")
		}
	}
	return nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// GetCollateral reports where a loan's collateral sits: held, returned to
// the borrower, or seized for the claim holder.
func (u *Usecase) GetCollateral(ctx context.Context, loanID uint64) (*CollateralDTO, error) {
	var d *escrow.Deposit
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		d, err = u.vault(r, u.clock().Unix()).Get(ctx, loanID)
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := &CollateralDTO{
		LoanID:      d.LoanID,
		Asset:       d.Asset.Hex(),
		Amount:      d.Amount.String(),
		Depositor:   d.Depositor.Hex(),
		Released:    d.Released,
		Outcome:     string(d.Outcome),
		DepositedAt: d.DepositedAt,
		ReleasedAt:  d.ReleasedAt,
	}
	if d.Released {
		dto.Recipient = d.Recipient.Hex()
	}
	return dto, nil
}

func (u *Usecase) GetBorrowerLoans(ctx context.Context, account common.Address) ([]LoanDTO, error) {
	ls, err := u.loans.ListByAccount(ctx, account, loan.RoleBorrower)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (u *Usecase) GetLenderLoans(ctx context.Context, account common.Address) ([]LoanDTO, error) {
	ls, err := u.loans.ListByAccount(ctx, account, loan.RoleLender)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

// IsTokenSupported reports whether the asset is configured and enabled.
func (u *Usecase) IsTokenSupported(ctx context.Context, addr common.Address) (bool, error) {
	a, err := u.assets.Get(ctx, addr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Enabled, nil
}

func (u *Usecase) NextLoanID(ctx context.Context) (uint64, error) {
	return u.loans.PeekNextID(ctx)
}

func (u *Usecase) ListLoans(ctx context.Context, f loan.Filter) (*LoanPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, loan.ErrInvalidStatus
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	ls, total, err := u.loans.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &LoanPage{Items: toDTOs(ls), Total: total, Offset: f.Offset, Limit: f.Limit}, nil
}

// ListLiquidatable returns up to limit active loans past their deadline
// with ids greater than afterID, in id order.
func (u *Usecase) ListLiquidatable(ctx context.Context, afterID uint64, limit int) ([]LoanDTO, error) {
	ls, err := u.loans.ListDue(ctx, u.clock().Unix(), afterID, limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}
