package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"mintwatch/internal/model"
)

var (
	testContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testHolder   = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

func testLog(from, to common.Address, amount *big.Int) types.Log {
	return types.Log{
		Address: testContract,
		Topics: []common.Hash{
			TransferTopic(),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data:        common.BigToHash(amount).Bytes(),
		BlockNumber: 123,
		TxHash:      common.HexToHash("0xfeed"),
		Index:       4,
	}
}

func TestDecodeTransfer(t *testing.T) {
	amount, _ := new(big.Int).SetString("1000000000000000000", 10)
	ev, err := DecodeTransfer(testLog(common.Address{}, testHolder, amount))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if ev.From != (common.Address{}) {
		t.Fatalf("expected zero sender, got %s", ev.From.Hex())
	}
	if ev.To != testHolder {
		t.Fatalf("expected holder recipient, got %s", ev.To.Hex())
	}
	if ev.Amount.Cmp(amount) != 0 {
		t.Fatalf("amount mismatch: %s", ev.Amount)
	}
	if ev.BlockNumber != 123 || ev.LogIndex != 4 {
		t.Fatalf("log position lost: block %d index %d", ev.BlockNumber, ev.LogIndex)
	}
}

func TestDecodeTransferWrongTopicCount(t *testing.T) {
	log := testLog(testHolder, testContract, big.NewInt(1))
	log.Topics = log.Topics[:2]

	_, err := DecodeTransfer(log)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	var decodeErr *model.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
}

func TestDecodeTransferWrongDataLength(t *testing.T) {
	log := testLog(testHolder, testContract, big.NewInt(1))
	log.Data = log.Data[:16]

	if _, err := DecodeTransfer(log); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDecodeTransferWrongTopic0(t *testing.T) {
	log := testLog(testHolder, testContract, big.NewInt(1))
	log.Topics[0] = common.HexToHash("0x1234")

	if _, err := DecodeTransfer(log); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		from common.Address
		to   common.Address
		want model.Classification
	}{
		{"mint", common.Address{}, testHolder, model.Mint},
		{"burn", testHolder, common.Address{}, model.Burn},
		{"ordinary", testHolder, testContract, model.Ignored},
		{"zero to zero", common.Address{}, common.Address{}, model.Ignored},
	}

	for _, tc := range cases {
		ev := model.TransferEvent{From: tc.from, To: tc.to, Amount: big.NewInt(1)}
		if got := Classify(ev); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
