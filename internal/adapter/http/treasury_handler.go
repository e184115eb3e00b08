package http

import (
	"net/http"

	"lenoa-backend/internal/usecase/treasury"

	"github.com/labstack/echo/v4"
)

type TreasuryHandler struct{ uc *treasury.Usecase }

func NewTreasuryHandler(uc *treasury.Usecase) *TreasuryHandler { return &TreasuryHandler{uc: uc} }

type creditReq struct {
	Asset  string `json:"asset"  validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"required,uint_str"`
}

type payoutRejectionReq struct {
	Rejects bool `json:"rejects"`
}

func (h *TreasuryHandler) Balance(c echo.Context) error {
	account, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	assetAddr, ok := parseAddress(c.Param("asset"))
	if !ok {
		return badRequest(c, "invalid asset path param")
	}
	bal, err := h.uc.BalanceOf(c.Request().Context(), account, assetAddr)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"account": account.Hex(),
		"asset":   assetAddr.Hex(),
		"balance": bal.String(),
	})
}

func (h *TreasuryHandler) Credit(c echo.Context) error {
	account, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	var req creditReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	assetAddr, _ := parseAddress(req.Asset)
	bal, err := h.uc.Credit(c.Request().Context(), caller(c), account, assetAddr, parseUnits(req.Amount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"account": account.Hex(),
		"asset":   assetAddr.Hex(),
		"balance": bal.String(),
	})
}

func (h *TreasuryHandler) SetPayoutRejection(c echo.Context) error {
	account, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	var req payoutRejectionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if err := h.uc.SetPayoutRejection(c.Request().Context(), caller(c), account, req.Rejects); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"account": account.Hex(), "rejects_payouts": req.Rejects})
}

func (h *TreasuryHandler) WithdrawFees(c echo.Context) error {
	assetAddr, ok := parseAddress(c.Param("asset"))
	if !ok {
		return badRequest(c, "invalid asset path param")
	}
	dto, err := h.uc.WithdrawFees(c.Request().Context(), caller(c), assetAddr)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
