package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Classification buckets a transfer by what it does to total supply.
type Classification int

const (
	Ignored Classification = iota
	Mint
	Burn
)

// String returns the human-readable name of the classification.
func (c Classification) String() string {
	switch c {
	case Mint:
		return "Mint"
	case Burn:
		return "Burn"
	default:
		return "Ignored"
	}
}

// TransferEvent is a decoded ERC-20 Transfer log.
type TransferEvent struct {
	Token       common.Address
	From        common.Address
	To          common.Address
	Amount      *big.Int
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint64
}
