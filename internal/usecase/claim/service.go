package claim

import (
	"context"
	"strconv"
	"time"

	domain "lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/event"
	"lenoa-backend/internal/domain/uow"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Service exposes the holder-facing side of the registry. Each mutation is
// its own unit of work.
type Service struct {
	uow     uow.UnitOfWork
	reads   *Registry
	opts    Options
	emitter event.Emitter
	log     *logrus.Logger
	clock   func() time.Time
}

func NewService(tx uow.UnitOfWork, repo domain.Repository, opts Options, emitter event.Emitter, log *logrus.Logger) *Service {
	if emitter == nil {
		emitter = event.NoopEmitter{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{uow: tx, opts: opts, emitter: emitter, log: log, clock: time.Now}
	if s.opts.Now == nil {
		s.opts.Now = func() int64 { return s.clock().Unix() }
	}
	s.reads = NewRegistry(repo, s.opts)
	return s
}

func (s *Service) SetClock(fn func() time.Time) {
	if fn != nil {
		s.clock = fn
	}
}

type TokenDTO struct {
	TokenID        uint64 `json:"token_id"`
	Owner          string `json:"owner,omitempty"`
	Approved       string `json:"approved,omitempty"`
	Burned         bool   `json:"burned"`
	OriginalLender string `json:"original_lender"`
	MintedAt       int64  `json:"minted_at"`
	TokenURI       string `json:"token_uri,omitempty"`
}

func (s *Service) Transfer(ctx context.Context, caller, from, to common.Address, tokenID uint64) (*TokenDTO, error) {
	var dto *TokenDTO
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := NewRegistry(r.Claims, s.opts).Transfer(ctx, caller, from, to, tokenID)
		if err != nil {
			return err
		}
		dto = s.toDTO(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := event.New(event.TypeClaimTransferred, tokenID, s.clock(), map[string]string{
		"token_id": strconv.FormatUint(tokenID, 10),
		"from":     from.Hex(),
		"to":       to.Hex(),
		"operator": caller.Hex(),
	})
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.log.WithError(err).WithField("token_id", tokenID).Warn("claim: emit transfer event")
	}
	return dto, nil
}

func (s *Service) Approve(ctx context.Context, caller, spender common.Address, tokenID uint64) error {
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		return NewRegistry(r.Claims, s.opts).Approve(ctx, caller, spender, tokenID)
	})
}

func (s *Service) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		return NewRegistry(r.Claims, s.opts).SetApprovalForAll(ctx, owner, operator, approved)
	})
}

func (s *Service) Get(ctx context.Context, tokenID uint64) (*TokenDTO, error) {
	t, err := s.reads.Token(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(t), nil
}

func (s *Service) OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error) {
	return s.reads.OwnerOf(ctx, tokenID)
}

func (s *Service) BalanceOf(ctx context.Context, owner common.Address) (int64, error) {
	return s.reads.BalanceOf(ctx, owner)
}

func (s *Service) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return s.reads.IsApprovedForAll(ctx, owner, operator)
}

// Document is the presentation record served at the token URI.
type Document struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Description string      `json:"description"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

func (s *Service) Document(ctx context.Context, tokenID uint64) (*Document, error) {
	uri, err := s.reads.TokenURI(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	md, err := s.reads.Metadata(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	id := strconv.FormatUint(tokenID, 10)
	return &Document{
		Name:        Name + " #" + id,
		Symbol:      Symbol,
		Description: "Lender claim on loan " + id + ". The holder receives the loan proceeds.",
		ExternalURL: uri,
		Attributes: []Attribute{
			{TraitType: "loan_id", Value: md.LoanID},
			{TraitType: "original_lender", Value: md.OriginalLender.Hex()},
			{TraitType: "minted_at", Value: md.MintedAt},
		},
	}, nil
}

func (s *Service) toDTO(t *domain.Token) *TokenDTO {
	dto := &TokenDTO{
		TokenID:        t.TokenID,
		Burned:         t.Burned,
		OriginalLender: t.OriginalLender.Hex(),
		MintedAt:       t.MintedAt,
	}
	if !t.Burned {
		dto.Owner = t.Owner.Hex()
		dto.TokenURI = tokenURI(s.opts.baseURI(), t.TokenID)
		if t.Approved != (common.Address{}) {
			dto.Approved = t.Approved.Hex()
		}
	}
	return dto
}
