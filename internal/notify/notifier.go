package notify

import (
	"context"
	"fmt"
	"strings"

	"mintwatch/internal/model"
)

// Notifier dispatches a single notification to a channel.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Format renders the Markdown message body for a notification. The tx hash
// is linked to the explorer when an explorer URL is configured.
func Format(n model.Notification, explorerURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s detected on %s*\n\n", n.Kind, n.Network)
	fmt.Fprintf(&b, "Token: %s (`%s`)\n", n.Symbol, n.Token)
	fmt.Fprintf(&b, "From: `%s`\n", n.From)
	fmt.Fprintf(&b, "To: `%s`\n", n.To)
	fmt.Fprintf(&b, "Amount: %s\n", n.Amount)
	if explorerURL != "" {
		fmt.Fprintf(&b, "Tx: [%s](%s/tx/%s)\n", n.TxHash, strings.TrimRight(explorerURL, "/"), n.TxHash)
	} else {
		fmt.Fprintf(&b, "Tx: `%s`\n", n.TxHash)
	}
	fmt.Fprintf(&b, "Block: %d", n.BlockNumber)

	return b.String()
}
