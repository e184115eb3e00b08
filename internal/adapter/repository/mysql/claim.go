package mysql

import (
	"context"
	"errors"

	claimDomain "lenoa-backend/internal/domain/claim"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClaimRepository struct{ db *gorm.DB }

func NewClaimRepository(db *gorm.DB) *ClaimRepository { return &ClaimRepository{db: db} }

func (r *ClaimRepository) Create(ctx context.Context, t *claimDomain.Token) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ClaimRepository) Save(ctx context.Context, t *claimDomain.Token) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ClaimRepository) GetByID(ctx context.Context, tokenID uint64) (*claimDomain.Token, error) {
	var out claimDomain.Token
	if err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ClaimRepository) GetByIDForUpdate(ctx context.Context, tokenID uint64) (*claimDomain.Token, error) {
	var out claimDomain.Token
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_id = ?", tokenID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ClaimRepository) CountByOwner(ctx context.Context, owner common.Address) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&claimDomain.Token{}).
		Where("owner = ? AND burned = ?", owner, false).
		Count(&n).Error
	return n, err
}

func (r *ClaimRepository) SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "operator"}},
			DoUpdates: clause.AssignmentColumns([]string{"approved"}),
		}).
		Create(&claimDomain.Operator{Owner: owner, Operator: operator, Approved: approved}).Error
}

func (r *ClaimRepository) IsOperator(ctx context.Context, owner, operator common.Address) (bool, error) {
	var out claimDomain.Operator
	err := r.db.WithContext(ctx).
		Where("owner = ? AND operator = ?", owner, operator).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return out.Approved, nil
}
