package escrow

import "errors"

var (
	ErrNotFound         = errors.New("escrow: deposit not found")
	ErrAlreadyDeposited = errors.New("escrow: collateral already deposited")
	ErrAlreadyReleased  = errors.New("escrow: collateral already released")
	ErrZeroAmount       = errors.New("escrow: zero amount")
)
