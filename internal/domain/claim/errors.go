package claim

import "errors"

var (
	ErrNotFound         = errors.New("claim: token not found")
	ErrAlreadyMinted    = errors.New("claim: token already minted")
	ErrInvalidRecipient = errors.New("claim: invalid recipient")
	ErrInvalidOwner     = errors.New("claim: invalid owner")
	ErrSelfApproval     = errors.New("claim: approval to current owner")
)
