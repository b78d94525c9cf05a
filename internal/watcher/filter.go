package watcher

import (
	"github.com/ethereum/go-ethereum/common"

	"mintwatch/internal/token"
)

// Filter describes which logs qualify for the pipeline: the Transfer topic0
// plus an optional contract restriction.
type Filter struct {
	Addresses []common.Address
	Topic0    []common.Hash
}

// TransferFilter builds the filter for ERC-20 Transfer events. A nil
// contract watches every contract emitting the Transfer signature.
func TransferFilter(contract *common.Address) Filter {
	f := Filter{Topic0: []common.Hash{token.TransferTopic()}}
	if contract != nil {
		f.Addresses = []common.Address{*contract}
	}
	return f
}
