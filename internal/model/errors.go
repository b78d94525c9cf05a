package model

import "fmt"

// TransportError wraps a failure talking to the chain data source. It aborts
// the current block-range batch; the cursor must not advance past it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError marks a single log that does not match the expected event
// shape. The log is skipped; the rest of the batch continues.
type DecodeError struct {
	TxHash   string
	LogIndex uint64
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode log %s[%d]: %s", e.TxHash, e.LogIndex, e.Reason)
}

// DispatchError marks a failed notification delivery. The transaction is not
// recorded as seen so a later occurrence can retry delivery.
type DispatchError struct {
	Channel string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch via %s: %v", e.Channel, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
