package watcher

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDedupRecordAndSeen(t *testing.T) {
	d := NewDeduplicator()

	tx := common.HexToHash("0x01")
	if d.Seen(tx) {
		t.Fatalf("fresh hash must not be seen")
	}

	d.Record(tx)
	if !d.Seen(tx) {
		t.Fatalf("recorded hash must be seen")
	}

	d.Record(tx)
	if d.Len() != 1 {
		t.Fatalf("record must be idempotent, got len %d", d.Len())
	}
}

func TestDedupEviction(t *testing.T) {
	d := NewDeduplicator()

	hashes := make([]common.Hash, 1001)
	for i := range hashes {
		hashes[i] = common.BytesToHash([]byte{byte(i >> 8), byte(i), 0xff})
		d.Record(hashes[i])
	}

	if d.Len() > 1000 {
		t.Fatalf("set exceeded its bound: %d", d.Len())
	}

	for i := 0; i < 200; i++ {
		if d.Seen(hashes[i]) {
			t.Fatalf("entry %d should have been evicted", i)
		}
	}
	for i := 200; i < 1001; i++ {
		if !d.Seen(hashes[i]) {
			t.Fatalf("entry %d should have survived eviction", i)
		}
	}
}
