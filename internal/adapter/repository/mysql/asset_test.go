package mysql

import (
	"context"
	"testing"

	assetDomain "lenoa-backend/internal/domain/asset"

	"github.com/shopspring/decimal"
)

func TestAssetRepository_UpsertReplacesBounds(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()

	a := &assetDomain.SupportedAsset{
		Address: daiAddr, Symbol: "DAI", Decimals: 18,
		MinAmount: eth("100"), MaxAmount: eth("10000"), Enabled: true,
	}
	if err := repo.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, &assetDomain.SupportedAsset{
		Address: daiAddr, Symbol: "DAI", Decimals: 18,
		MinAmount: eth("50"), MaxAmount: eth("500"), Enabled: false,
	}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := repo.Get(ctx, daiAddr)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Enabled || !got.MinAmount.Equal(eth("50")) || !got.MaxAmount.Equal(eth("500")) {
		t.Fatalf("not replaced: %+v", got)
	}
	if !got.Within(eth("50")) || got.Within(eth("500").Add(decimal.NewFromInt(1))) {
		t.Fatal("Within bounds are not inclusive")
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d, %v", len(list), err)
	}
}
