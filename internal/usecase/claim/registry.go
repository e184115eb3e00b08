package claim

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"lenoa-backend/internal/domain/access"
	domain "lenoa-backend/internal/domain/claim"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Registry tracks who holds the lender claim of each loan. The holder at the
// moment of settlement is the one who gets paid.
type Registry struct {
	repo domain.Repository
	opts Options
}

func NewRegistry(repo domain.Repository, opts Options) *Registry {
	return &Registry{repo: repo, opts: opts}
}

func (g *Registry) Name() string   { return Name }
func (g *Registry) Symbol() string { return Symbol }

func (g *Registry) Mint(ctx context.Context, caller, to common.Address, loanID uint64) (*domain.Token, error) {
	if caller != g.opts.Factory {
		return nil, access.ErrOnlyFactory
	}
	if to == (common.Address{}) {
		return nil, domain.ErrInvalidRecipient
	}
	_, err := g.repo.GetByID(ctx, loanID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyMinted
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	t := &domain.Token{
		TokenID:        loanID,
		Owner:          to,
		OriginalLender: to,
		MintedAt:       g.opts.Now(),
	}
	if err := g.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Burn removes the token from circulation. Metadata stays readable.
func (g *Registry) Burn(ctx context.Context, caller common.Address, loanID uint64) error {
	if caller != g.opts.Factory {
		return access.ErrOnlyFactory
	}
	t, err := g.lockLive(ctx, loanID)
	if err != nil {
		return err
	}
	t.Burned = true
	t.BurnedAt = g.opts.Now()
	t.Approved = common.Address{}
	return g.repo.Save(ctx, t)
}

func (g *Registry) Transfer(ctx context.Context, caller, from, to common.Address, loanID uint64) (*domain.Token, error) {
	t, err := g.lockLive(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if t.Owner != from {
		return nil, access.ErrUnauthorized
	}
	ok, err := g.mayMove(ctx, t, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, access.ErrUnauthorized
	}
	if to == (common.Address{}) {
		return nil, domain.ErrInvalidRecipient
	}

	t.Owner = to
	t.Approved = common.Address{}
	if err := g.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Approve lets spender move a single token. The zero address clears it.
func (g *Registry) Approve(ctx context.Context, caller, spender common.Address, loanID uint64) error {
	t, err := g.lockLive(ctx, loanID)
	if err != nil {
		return err
	}
	if spender == t.Owner {
		return domain.ErrSelfApproval
	}
	if caller != t.Owner {
		op, err := g.repo.IsOperator(ctx, t.Owner, caller)
		if err != nil {
			return err
		}
		if !op {
			return access.ErrUnauthorized
		}
	}
	t.Approved = spender
	return g.repo.Save(ctx, t)
}

func (g *Registry) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	if operator == (common.Address{}) || operator == owner {
		return domain.ErrInvalidRecipient
	}
	return g.repo.SetOperator(ctx, owner, operator, approved)
}

func (g *Registry) OwnerOf(ctx context.Context, loanID uint64) (common.Address, error) {
	t, err := g.live(ctx, loanID)
	if err != nil {
		return common.Address{}, err
	}
	return t.Owner, nil
}

// LockOwner is OwnerOf under a row lock, for settlement that pays the
// holder inside the same transaction.
func (g *Registry) LockOwner(ctx context.Context, loanID uint64) (common.Address, error) {
	t, err := g.lockLive(ctx, loanID)
	if err != nil {
		return common.Address{}, err
	}
	return t.Owner, nil
}

func (g *Registry) BalanceOf(ctx context.Context, owner common.Address) (int64, error) {
	if owner == (common.Address{}) {
		return 0, domain.ErrInvalidOwner
	}
	return g.repo.CountByOwner(ctx, owner)
}

func (g *Registry) GetApproved(ctx context.Context, loanID uint64) (common.Address, error) {
	t, err := g.live(ctx, loanID)
	if err != nil {
		return common.Address{}, err
	}
	return t.Approved, nil
}

func (g *Registry) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return g.repo.IsOperator(ctx, owner, operator)
}

// Metadata is available for any token ever minted, burned or not.
func (g *Registry) Metadata(ctx context.Context, loanID uint64) (domain.Metadata, error) {
	t, err := g.repo.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Metadata{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Metadata{}, err
	}
	return t.Metadata(), nil
}

// Token returns the raw record, burned tokens included.
func (g *Registry) Token(ctx context.Context, loanID uint64) (*domain.Token, error) {
	t, err := g.repo.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (g *Registry) TokenURI(ctx context.Context, loanID uint64) (string, error) {
	if _, err := g.live(ctx, loanID); err != nil {
		return "", err
	}
	return tokenURI(g.opts.baseURI(), loanID), nil
}

func tokenURI(base string, id uint64) string {
	return strings.TrimRight(base, "/") + "/" + strconv.FormatUint(id, 10)
}

func (g *Registry) mayMove(ctx context.Context, t *domain.Token, caller common.Address) (bool, error) {
	if caller == t.Owner || (caller == t.Approved && caller != common.Address{}) {
		return true, nil
	}
	return g.repo.IsOperator(ctx, t.Owner, caller)
}

func (g *Registry) live(ctx context.Context, loanID uint64) (*domain.Token, error) {
	t, err := g.repo.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Burned {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (g *Registry) lockLive(ctx context.Context, loanID uint64) (*domain.Token, error) {
	t, err := g.repo.GetByIDForUpdate(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Burned {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
