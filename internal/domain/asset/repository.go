package asset

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type Repository interface {
	Upsert(ctx context.Context, a *SupportedAsset) error
	Get(ctx context.Context, addr common.Address) (*SupportedAsset, error)
	List(ctx context.Context) ([]SupportedAsset, error)
}
