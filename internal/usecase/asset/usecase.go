package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lenoa-backend/internal/domain/access"
	domain "lenoa-backend/internal/domain/asset"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxDecimals = 36

type Usecase struct {
	repo      domain.Repository
	operators access.Operators
	log       *logrus.Logger
}

func NewUsecase(repo domain.Repository, operators access.Operators, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{repo: repo, operators: operators, log: log}
}

type AddAssetInput struct {
	Address   common.Address
	Symbol    string
	Decimals  uint8
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

type AssetDTO struct {
	Address   string `json:"address"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
	MinAmount string `json:"min_amount"`
	MaxAmount string `json:"max_amount"`
	Enabled   bool   `json:"enabled"`
	Native    bool   `json:"native"`
}

func toDTO(a *domain.SupportedAsset) *AssetDTO {
	return &AssetDTO{
		Address:   a.Address.Hex(),
		Symbol:    a.Symbol,
		Decimals:  a.Decimals,
		MinAmount: a.MinAmount.String(),
		MaxAmount: a.MaxAmount.String(),
		Enabled:   a.Enabled,
		Native:    a.IsNative(),
	}
}

func validate(in AddAssetInput) error {
	if strings.TrimSpace(in.Symbol) == "" || len(in.Symbol) > 16 {
		return domain.ErrInvalidSymbol
	}
	if in.Decimals > maxDecimals {
		return domain.ErrInvalidScale
	}
	if !in.MinAmount.IsPositive() || !in.MinAmount.IsInteger() || !in.MaxAmount.IsInteger() {
		return fmt.Errorf("%w: bounds must be positive whole base units", domain.ErrInvalidBounds)
	}
	if in.MinAmount.GreaterThan(in.MaxAmount) {
		return fmt.Errorf("%w: min above max", domain.ErrInvalidBounds)
	}
	return nil
}

func (u *Usecase) upsert(ctx context.Context, in AddAssetInput) (*AssetDTO, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	a := &domain.SupportedAsset{
		Address:   in.Address,
		Symbol:    strings.TrimSpace(in.Symbol),
		Decimals:  in.Decimals,
		MinAmount: in.MinAmount,
		MaxAmount: in.MaxAmount,
		Enabled:   true,
	}
	if err := u.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// AddSupportedAsset enables an asset or replaces its bounds.
func (u *Usecase) AddSupportedAsset(ctx context.Context, caller common.Address, in AddAssetInput) (*AssetDTO, error) {
	if err := u.operators.Require(caller); err != nil {
		return nil, err
	}
	dto, err := u.upsert(ctx, in)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"asset":    dto.Address,
		"symbol":   dto.Symbol,
		"operator": caller.Hex(),
	}).Info("asset: supported")
	return dto, nil
}

func (u *Usecase) DisableAsset(ctx context.Context, caller, addr common.Address) (*AssetDTO, error) {
	if err := u.operators.Require(caller); err != nil {
		return nil, err
	}
	a, err := u.repo.Get(ctx, addr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Enabled = false
	if err := u.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"asset": addr.Hex(), "operator": caller.Hex()}).Info("asset: disabled")
	return toDTO(a), nil
}

func (u *Usecase) IsSupported(ctx context.Context, addr common.Address) (bool, error) {
	a, err := u.repo.Get(ctx, addr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Enabled, nil
}

func (u *Usecase) List(ctx context.Context) ([]AssetDTO, error) {
	list, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AssetDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i]))
	}
	return out, nil
}

// Seed installs the startup asset table without an operator check.
func (u *Usecase) Seed(ctx context.Context, assets []AddAssetInput) error {
	for _, in := range assets {
		if _, err := u.upsert(ctx, in); err != nil {
			return fmt.Errorf("seed %s: %w", in.Symbol, err)
		}
	}
	u.log.WithField("count", len(assets)).Info("asset: seeded")
	return nil
}

func units(whole string, decimals int32) decimal.Decimal {
	return decimal.RequireFromString(whole).Shift(decimals)
}

// DefaultAssets is the launch configuration: native ETH plus four test-net tokens.
func DefaultAssets() []AddAssetInput {
	return []AddAssetInput{
		{Address: domain.Native, Symbol: "ETH", Decimals: 18, MinAmount: units("0.01", 18), MaxAmount: units("10", 18)},
		{Address: common.HexToAddress("0xFF34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a357"), Symbol: "DAI", Decimals: 18, MinAmount: units("100", 18), MaxAmount: units("10000", 18)},
		{Address: common.HexToAddress("0x94a9D9AC8a22534E3FaCa9F4e7F2E2cf85d5E4C8"), Symbol: "USDC", Decimals: 6, MinAmount: units("100", 6), MaxAmount: units("10000", 6)},
		{Address: common.HexToAddress("0x779877A7B0D9E8603169DdbD7836e478b4624789"), Symbol: "LINK", Decimals: 18, MinAmount: units("10", 18), MaxAmount: units("1000", 18)},
		{Address: common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"), Symbol: "WETH", Decimals: 18, MinAmount: units("0.01", 18), MaxAmount: units("10", 18)},
	}
}
