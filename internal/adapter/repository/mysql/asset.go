package mysql

import (
	"context"

	assetDomain "lenoa-backend/internal/domain/asset"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) Upsert(ctx context.Context, a *assetDomain.SupportedAsset) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"symbol", "decimals", "min_amount", "max_amount", "enabled", "updated_at"}),
		}).
		Create(a).Error
}

func (r *AssetRepository) Get(ctx context.Context, addr common.Address) (*assetDomain.SupportedAsset, error) {
	var out assetDomain.SupportedAsset
	if err := r.db.WithContext(ctx).Where("address = ?", addr).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AssetRepository) List(ctx context.Context) ([]assetDomain.SupportedAsset, error) {
	out := []assetDomain.SupportedAsset{}
	err := r.db.WithContext(ctx).Order("symbol ASC").Find(&out).Error
	return out, err
}
