package claim

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type Repository interface {
	Create(ctx context.Context, t *Token) error
	GetByID(ctx context.Context, tokenID uint64) (*Token, error)
	GetByIDForUpdate(ctx context.Context, tokenID uint64) (*Token, error)
	Save(ctx context.Context, t *Token) error
	CountByOwner(ctx context.Context, owner common.Address) (int64, error)

	SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error
	IsOperator(ctx context.Context, owner, operator common.Address) (bool, error)
}
