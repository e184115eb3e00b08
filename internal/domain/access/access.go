package access

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrOnlyFactory  = errors.New("access: only factory can call")
	ErrUnauthorized = errors.New("access: unauthorized")
)

// Operators is the set of accounts allowed to use the admin surface.
type Operators map[common.Address]struct{}

func NewOperators(addrs ...common.Address) Operators {
	out := make(Operators, len(addrs))
	for _, a := range addrs {
		out[a] = struct{}{}
	}
	return out
}

func (o Operators) Allows(addr common.Address) bool {
	_, ok := o[addr]
	return ok
}

func (o Operators) Require(addr common.Address) error {
	if !o.Allows(addr) {
		return ErrUnauthorized
	}
	return nil
}
