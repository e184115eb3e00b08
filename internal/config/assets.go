package config

import (
	"fmt"
	"os"
	"strings"

	assetuc "lenoa-backend/internal/usecase/asset"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AssetFile is the startup asset table. Bounds are given in whole units and
// scaled by decimals on load.
type AssetFile struct {
	Assets []AssetEntry `yaml:"assets"`
}

type AssetEntry struct {
	Address  string `yaml:"address"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
	Min      string `yaml:"min"`
	Max      string `yaml:"max"`
}

// LoadAssets reads the asset seed file. An empty path yields the built-in table.
func LoadAssets(path string) ([]assetuc.AddAssetInput, error) {
	if path == "" {
		return assetuc.DefaultAssets(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open assets file: %w", err)
	}
	defer file.Close()

	var af AssetFile
	if err := yaml.NewDecoder(file).Decode(&af); err != nil {
		return nil, fmt.Errorf("decode assets file: %w", err)
	}
	if len(af.Assets) == 0 {
		return nil, fmt.Errorf("assets file %s lists no assets", path)
	}

	out := make([]assetuc.AddAssetInput, 0, len(af.Assets))
	seen := make(map[common.Address]bool, len(af.Assets))
	for i, a := range af.Assets {
		in, err := a.input()
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		if seen[in.Address] {
			return nil, fmt.Errorf("asset %d: duplicate address %s", i, in.Address.Hex())
		}
		seen[in.Address] = true
		out = append(out, in)
	}
	return out, nil
}

func (a AssetEntry) input() (assetuc.AddAssetInput, error) {
	addr := strings.TrimSpace(a.Address)
	if !common.IsHexAddress(addr) {
		return assetuc.AddAssetInput{}, fmt.Errorf("invalid address %q", a.Address)
	}
	lo, err := decimal.NewFromString(strings.TrimSpace(a.Min))
	if err != nil {
		return assetuc.AddAssetInput{}, fmt.Errorf("invalid min %q: %w", a.Min, err)
	}
	hi, err := decimal.NewFromString(strings.TrimSpace(a.Max))
	if err != nil {
		return assetuc.AddAssetInput{}, fmt.Errorf("invalid max %q: %w", a.Max, err)
	}
	return assetuc.AddAssetInput{
		Address:   common.HexToAddress(addr),
		Symbol:    strings.TrimSpace(a.Symbol),
		Decimals:  a.Decimals,
		MinAmount: lo.Shift(int32(a.Decimals)),
		MaxAmount: hi.Shift(int32(a.Decimals)),
	}, nil
}
