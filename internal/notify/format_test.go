package notify

import (
	"strings"
	"testing"

	"mintwatch/internal/model"
)

func sampleNotification() model.Notification {
	return model.Notification{
		Kind:        "Mint",
		Network:     "Ethereum",
		Symbol:      "WETH",
		Token:       "0x1111111111111111111111111111111111111111",
		From:        "0x0000000000000000000000000000000000000000",
		To:          "0x0000000000000000000000000000000000000abc",
		Amount:      "1.0",
		TxHash:      "0xfeed",
		BlockNumber: 123,
	}
}

func TestFormat(t *testing.T) {
	msg := Format(sampleNotification(), "https://etherscan.io")

	if !strings.HasPrefix(msg, "*Mint detected on Ethereum*\n\n") {
		t.Fatalf("unexpected header: %q", msg)
	}
	for _, want := range []string{
		"Token: WETH (`0x1111111111111111111111111111111111111111`)",
		"From: `0x0000000000000000000000000000000000000000`",
		"To: `0x0000000000000000000000000000000000000abc`",
		"Amount: 1.0",
		"Tx: [0xfeed](https://etherscan.io/tx/0xfeed)",
		"Block: 123",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatWithoutExplorer(t *testing.T) {
	msg := Format(sampleNotification(), "")
	if !strings.Contains(msg, "Tx: `0xfeed`") {
		t.Fatalf("expected plain tx hash, got:\n%s", msg)
	}
}
