package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"mintwatch/internal/model"
)

var zeroAddress common.Address

// DecodeTransfer converts a raw log into a TransferEvent. It fails with a
// DecodeError when the log does not have the Transfer(address,address,uint256)
// shape: topic0 plus two indexed address topics and a 32-byte amount payload.
func DecodeTransfer(log types.Log) (model.TransferEvent, error) {
	if len(log.Topics) != 3 {
		return model.TransferEvent{}, &model.DecodeError{
			TxHash:   log.TxHash.Hex(),
			LogIndex: uint64(log.Index),
			Reason:   "unexpected topic count",
		}
	}
	if log.Topics[0] != TransferTopic() {
		return model.TransferEvent{}, &model.DecodeError{
			TxHash:   log.TxHash.Hex(),
			LogIndex: uint64(log.Index),
			Reason:   "topic0 is not Transfer",
		}
	}
	if len(log.Data) != 32 {
		return model.TransferEvent{}, &model.DecodeError{
			TxHash:   log.TxHash.Hex(),
			LogIndex: uint64(log.Index),
			Reason:   "unexpected data length",
		}
	}

	return model.TransferEvent{
		Token:       log.Address,
		From:        common.BytesToAddress(log.Topics[1].Bytes()),
		To:          common.BytesToAddress(log.Topics[2].Bytes()),
		Amount:      new(big.Int).SetBytes(log.Data),
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
		LogIndex:    uint64(log.Index),
	}, nil
}

// Classify buckets a transfer as Mint (from the zero address), Burn (to the
// zero address) or Ignored. A transfer between two zero addresses is treated
// as ordinary and ignored.
func Classify(ev model.TransferEvent) model.Classification {
	fromZero := ev.From == zeroAddress
	toZero := ev.To == zeroAddress

	switch {
	case fromZero && !toZero:
		return model.Mint
	case toZero && !fromZero:
		return model.Burn
	default:
		return model.Ignored
	}
}
