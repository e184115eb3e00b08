package claim

import "github.com/ethereum/go-ethereum/common"

const (
	Name           = "Lenoa Loan NFT"
	Symbol         = "LLOAN"
	DefaultBaseURI = "https://lenoa.app/api/nft"
)

type Options struct {
	// Factory is the only caller allowed to mint and burn.
	Factory common.Address
	BaseURI string
	Now     func() int64
}

func (o Options) baseURI() string {
	if o.BaseURI == "" {
		return DefaultBaseURI
	}
	return o.BaseURI
}
