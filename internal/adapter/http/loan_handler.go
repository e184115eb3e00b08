package http

import (
	"net/http"
	"strconv"

	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/internal/usecase/lending"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *lending.Usecase }

func NewLoanHandler(uc *lending.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	LoanAsset        string `json:"loan_asset"        validate:"required,eth_addr"`
	LoanAmount       string `json:"loan_amount"       validate:"required,uint_str"`
	InterestRateBps  uint32 `json:"interest_rate_bps"`
	DurationDays     uint32 `json:"duration_days"`
	CollateralAsset  string `json:"collateral_asset"  validate:"required,eth_addr"`
	CollateralAmount string `json:"collateral_amount" validate:"required,uint_str"`
	// Value is the native amount sent along with the request.
	Value string `json:"value" validate:"omitempty,uint_str"`
}

type valueReq struct {
	Value string `json:"value" validate:"omitempty,uint_str"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateLoanRequest(c.Request().Context(), lending.CreateLoanInput{
		Borrower:         caller(c),
		LoanAsset:        common.HexToAddress(req.LoanAsset),
		LoanAmount:       parseUnits(req.LoanAmount),
		InterestRateBps:  req.InterestRateBps,
		DurationDays:     req.DurationDays,
		CollateralAsset:  common.HexToAddress(req.CollateralAsset),
		CollateralAmount: parseUnits(req.CollateralAmount),
		Value:            parseUnits(req.Value),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetCollateral(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	dto, err := h.uc.GetCollateral(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	f := loan.Filter{Status: loan.Status(c.QueryParam("status"))}
	for name, dst := range map[string]*int{"offset": &f.Offset, "limit": &f.Limit} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid "+name+" query param")
		}
		*dst = n
	}
	page, err := h.uc.ListLoans(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *LoanHandler) BorrowerLoans(c echo.Context) error {
	account, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	list, err := h.uc.GetBorrowerLoans(c.Request().Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) LenderLoans(c echo.Context) error {
	account, ok := parseAddress(c.Param("account"))
	if !ok {
		return badRequest(c, "invalid account path param")
	}
	list, err := h.uc.GetLenderLoans(c.Request().Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req valueReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.FundLoan(c.Request().Context(), lending.FundLoanInput{
		Funder: caller(c),
		LoanID: id,
		Value:  parseUnits(req.Value),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req valueReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RepayLoan(c.Request().Context(), lending.RepayLoanInput{
		Caller: caller(c),
		LoanID: id,
		Value:  parseUnits(req.Value),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) LiquidateLoan(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	dto, err := h.uc.LiquidateLoan(c.Request().Context(), lending.LiquidateLoanInput{Caller: caller(c), LoanID: id})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	id, ok := parseID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	dto, err := h.uc.CancelLoan(c.Request().Context(), lending.CancelLoanInput{Caller: caller(c), LoanID: id})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
