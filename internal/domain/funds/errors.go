package funds

import "errors"

var (
	ErrInsufficientBalance = errors.New("funds: insufficient balance")
	ErrPayoutFailed        = errors.New("funds: payout failed")
	ErrInvalidAmount       = errors.New("funds: invalid amount")
)
