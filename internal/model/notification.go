package model

// Notification is the fully-resolved payload handed to the notifier and,
// when archiving is enabled, to the archive sink.
type Notification struct {
	Kind        string `json:"kind"`
	Network     string `json:"network"`
	Symbol      string `json:"symbol"`
	Token       string `json:"token"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	RawAmount   string `json:"raw_amount"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	SentAt      string `json:"sent_at"`
}
