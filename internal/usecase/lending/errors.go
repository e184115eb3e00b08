package lending

import (
	"errors"

	"lenoa-backend/internal/domain/access"
	"lenoa-backend/internal/domain/asset"
	"lenoa-backend/internal/domain/claim"
	"lenoa-backend/internal/domain/escrow"
	"lenoa-backend/internal/domain/funds"
	"lenoa-backend/internal/domain/loan"
)

const CodeInternal = "Internal"

var errorCodes = []struct {
	err  error
	code string
}{
	{loan.ErrNotFound, "NotFound"},
	{loan.ErrInvalidTransition, "InvalidTransition"},
	{loan.ErrInvalidAccount, "InvalidAccount"},
	{loan.ErrInvalidStatus, "InvalidStatus"},
	{loan.ErrInvalidAmount, "InvalidAmount"},
	{loan.ErrInvalidRate, "InvalidRate"},
	{loan.ErrInvalidDuration, "InvalidDuration"},
	{loan.ErrUnsupportedAsset, "UnsupportedAsset"},
	{loan.ErrCollateralRequired, "CollateralRequired"},
	{loan.ErrValueMismatch, "ValueMismatch"},
	{loan.ErrLoanNotAvailable, "LoanNotAvailable"},
	{loan.ErrLoanNotActive, "LoanNotActive"},
	{loan.ErrLoanNotPending, "LoanNotPending"},
	{loan.ErrLoanNotDefaultedYet, "LoanNotDefaultedYet"},
	{loan.ErrLoanDefaulted, "LoanDefaulted"},
	{loan.ErrCannotFundOwnLoan, "CannotFundOwnLoan"},
	{loan.ErrOnlyBorrowerCanRepay, "OnlyBorrowerCanRepay"},
	{loan.ErrOnlyBorrowerCancel, "OnlyBorrowerCanCancel"},
	{loan.ErrIncorrectRepaymentAmount, "IncorrectRepaymentAmount"},

	{escrow.ErrNotFound, "NotFound"},
	{escrow.ErrAlreadyDeposited, "AlreadyDeposited"},
	{escrow.ErrAlreadyReleased, "AlreadyReleased"},
	{escrow.ErrZeroAmount, "InvalidAmount"},

	{claim.ErrNotFound, "NotFound"},
	{claim.ErrAlreadyMinted, "AlreadyMinted"},
	{claim.ErrInvalidRecipient, "InvalidRecipient"},
	{claim.ErrInvalidOwner, "InvalidAccount"},
	{claim.ErrSelfApproval, "InvalidRecipient"},

	{asset.ErrNotFound, "NotFound"},
	{asset.ErrInvalidBounds, "InvalidAmount"},
	{asset.ErrInvalidSymbol, "InvalidAsset"},
	{asset.ErrInvalidScale, "InvalidAsset"},

	{funds.ErrPayoutFailed, "PayoutFailed"},
	{funds.ErrInsufficientBalance, "InsufficientBalance"},
	{funds.ErrInvalidAmount, "InvalidAmount"},

	{access.ErrOnlyFactory, "OnlyFactoryCanCall"},
	{access.ErrUnauthorized, "Unauthorized"},
}

// ErrorCode names the failure of any engine operation. Unknown errors map to CodeInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
