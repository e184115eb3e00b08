package loan

import "errors"

var (
	ErrNotFound          = errors.New("loan: not found")
	ErrInvalidTransition = errors.New("loan: invalid status transition")
	ErrInvalidAccount    = errors.New("loan: invalid account")
	ErrInvalidStatus     = errors.New("loan: invalid status")

	ErrInvalidAmount      = errors.New("loan: invalid amount")
	ErrInvalidRate        = errors.New("loan: invalid interest rate")
	ErrInvalidDuration    = errors.New("loan: invalid duration")
	ErrUnsupportedAsset   = errors.New("loan: unsupported asset")
	ErrCollateralRequired = errors.New("loan: collateral required")
	ErrValueMismatch      = errors.New("loan: incorrect attached value")

	ErrLoanNotAvailable     = errors.New("loan: not available")
	ErrLoanNotActive        = errors.New("loan: not active")
	ErrLoanNotPending       = errors.New("loan: not pending")
	ErrLoanNotDefaultedYet  = errors.New("loan: not defaulted yet")
	ErrLoanDefaulted        = errors.New("loan: defaulted")
	ErrCannotFundOwnLoan    = errors.New("loan: cannot fund own loan")
	ErrOnlyBorrowerCanRepay = errors.New("loan: only borrower can repay")
	ErrOnlyBorrowerCancel   = errors.New("loan: only borrower can cancel")

	ErrIncorrectRepaymentAmount = errors.New("loan: incorrect repayment amount")
)
