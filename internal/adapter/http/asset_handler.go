package http

import (
	"net/http"

	"lenoa-backend/internal/usecase/asset"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

type AssetHandler struct{ uc *asset.Usecase }

func NewAssetHandler(uc *asset.Usecase) *AssetHandler { return &AssetHandler{uc: uc} }

type addAssetReq struct {
	Address   string `json:"address"    validate:"required,eth_addr"`
	Symbol    string `json:"symbol"     validate:"required,max=16"`
	Decimals  uint8  `json:"decimals"   validate:"lte=36"`
	MinAmount string `json:"min_amount" validate:"required,uint_str"`
	MaxAmount string `json:"max_amount" validate:"required,uint_str"`
}

func (h *AssetHandler) List(c echo.Context) error {
	list, err := h.uc.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AssetHandler) Supported(c echo.Context) error {
	addr, ok := parseAddress(c.Param("asset"))
	if !ok {
		return badRequest(c, "invalid asset path param")
	}
	supported, err := h.uc.IsSupported(c.Request().Context(), addr)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"asset": addr.Hex(), "supported": supported})
}

func (h *AssetHandler) Add(c echo.Context) error {
	var req addAssetReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.AddSupportedAsset(c.Request().Context(), caller(c), asset.AddAssetInput{
		Address:   common.HexToAddress(req.Address),
		Symbol:    req.Symbol,
		Decimals:  req.Decimals,
		MinAmount: parseUnits(req.MinAmount),
		MaxAmount: parseUnits(req.MaxAmount),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AssetHandler) Disable(c echo.Context) error {
	addr, ok := parseAddress(c.Param("asset"))
	if !ok {
		return badRequest(c, "invalid asset path param")
	}
	dto, err := h.uc.DisableAsset(c.Request().Context(), caller(c), addr)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
