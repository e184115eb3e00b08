package http

import (
	"net/http"

	"lenoa-backend/internal/usecase/claim"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

type ClaimHandler struct{ svc *claim.Service }

func NewClaimHandler(svc *claim.Service) *ClaimHandler { return &ClaimHandler{svc: svc} }

type transferReq struct {
	From string `json:"from" validate:"omitempty,eth_addr"`
	To   string `json:"to"   validate:"required,eth_addr"`
}

type approveReq struct {
	Spender string `json:"spender" validate:"required,eth_addr"`
}

type operatorReq struct {
	Operator string `json:"operator" validate:"required,eth_addr"`
	Approved bool   `json:"approved"`
}

func (h *ClaimHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "token_id")
	if !ok {
		return badRequest(c, "invalid token_id path param")
	}
	dto, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClaimHandler) Balance(c echo.Context) error {
	owner, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	n, err := h.svc.BalanceOf(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"owner": owner.Hex(), "balance": n})
}

// Document serves the metadata presentation for a token URI.
func (h *ClaimHandler) Document(c echo.Context) error {
	id, ok := parseID(c, "token_id")
	if !ok {
		return badRequest(c, "invalid token_id path param")
	}
	doc, err := h.svc.Document(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *ClaimHandler) Transfer(c echo.Context) error {
	id, ok := parseID(c, "token_id")
	if !ok {
		return badRequest(c, "invalid token_id path param")
	}
	var req transferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	from := caller(c)
	if req.From != "" {
		from = common.HexToAddress(req.From)
	}
	dto, err := h.svc.Transfer(c.Request().Context(), caller(c), from, common.HexToAddress(req.To), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClaimHandler) Approve(c echo.Context) error {
	id, ok := parseID(c, "token_id")
	if !ok {
		return badRequest(c, "invalid token_id path param")
	}
	var req approveReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	spender := common.HexToAddress(req.Spender)
	if err := h.svc.Approve(c.Request().Context(), caller(c), spender, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"token_id": id, "approved": spender.Hex()})
}

func (h *ClaimHandler) SetApprovalForAll(c echo.Context) error {
	var req operatorReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	owner, operator := caller(c), common.HexToAddress(req.Operator)
	if err := h.svc.SetApprovalForAll(c.Request().Context(), owner, operator, req.Approved); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"owner":    owner.Hex(),
		"operator": operator.Hex(),
		"approved": req.Approved,
	})
}
