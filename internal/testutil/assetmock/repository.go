package assetmock

import (
	"context"

	domain "lenoa-backend/internal/domain/asset"

	"github.com/ethereum/go-ethereum/common"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	UpsertFn func(ctx context.Context, a *domain.SupportedAsset) error
	GetFn    func(ctx context.Context, addr common.Address) (*domain.SupportedAsset, error)
	ListFn   func(ctx context.Context) ([]domain.SupportedAsset, error)
}

func (m *Repo) Upsert(ctx context.Context, a *domain.SupportedAsset) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, a)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, addr common.Address) (*domain.SupportedAsset, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, addr)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.SupportedAsset, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}
