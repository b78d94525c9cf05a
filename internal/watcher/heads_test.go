package watcher

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeSub struct {
	errs chan error
}

func newFakeSub() *fakeSub {
	return &fakeSub{errs: make(chan error, 1)}
}

func (s *fakeSub) Err() <-chan error { return s.errs }
func (s *fakeSub) Unsubscribe()      {}

type fakeHeadSubscriber struct {
	mu       sync.Mutex
	failures int
	ch       chan<- *types.Header
	subs     []*fakeSub
}

func (f *fakeHeadSubscriber) SubscribeNewHeads(_ context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("connection refused")
	}
	f.ch = ch
	sub := newFakeSub()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeHeadSubscriber) setFailures(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
}

func (f *fakeHeadSubscriber) emit(number uint64) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- &types.Header{Number: new(big.Int).SetUint64(number)}
}

func (f *fakeHeadSubscriber) subCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeHeadSubscriber) latestSub() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

func readHead(t *testing.T, heads <-chan uint64) uint64 {
	t.Helper()
	select {
	case head, ok := <-heads:
		if !ok {
			t.Fatalf("heads channel closed")
		}
		return head
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for head")
	}
	return 0
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubHeadSourceRecoversAfterDrop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := &fakeHeadSubscriber{}
	src := NewSubHeadSource(subscriber, nil)
	src.reconnectDelay = time.Millisecond

	heads, err := src.Heads(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subscriber.emit(100)
	if got := readHead(t, heads); got != 100 {
		t.Fatalf("expected head 100, got %d", got)
	}

	// Drop the subscription and refuse the first resubscribe attempt; the
	// source must keep retrying instead of closing the channel.
	subscriber.setFailures(1)
	subscriber.latestSub().errs <- fmt.Errorf("dropped")

	waitFor(t, "resubscribe", func() bool { return subscriber.subCount() == 2 })

	subscriber.emit(101)
	if got := readHead(t, heads); got != 101 {
		t.Fatalf("expected head 101 after reconnect, got %d", got)
	}
}
