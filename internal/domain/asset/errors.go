package asset

import "errors"

var (
	ErrNotFound      = errors.New("asset: not found")
	ErrInvalidBounds = errors.New("asset: invalid amount bounds")
	ErrInvalidSymbol = errors.New("asset: invalid symbol")
	ErrInvalidScale  = errors.New("asset: invalid decimals")
)
