package core

import (
	"context"
	"testing"
)

func TestWalletViewScanCiphertextsPaginates(t *testing.T) {
	cfg := newTestLedgerConfig(t)
	addr, _ := newTestShieldedAddress(t)
	cfg.GenesisBlock = buildCoinbaseBlock(t, 0, addr, 1)

	led, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer led.Close()
	for i := uint64(1); i < 5; i++ {
		blk := buildCoinbaseBlock(t, i, addr, byte(i+1))
		if err := led.ApplyBlock(context.Background(), blk); err != nil {
			t.Fatalf("apply block %d: %v", i, err)
		}
	}

	view := NewWalletView(led)
	page, err := view.ScanCiphertexts(0, 2)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(page.Envelopes) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Envelopes))
	}
	if page.Done {
		t.Fatalf("expected more pages remaining")
	}
	if page.NextIndex != 2 {
		t.Fatalf("next index = %d, want 2", page.NextIndex)
	}

	rest, err := view.ScanCiphertexts(page.NextIndex, 10)
	if err != nil {
		t.Fatalf("scan rest: %v", err)
	}
	if !rest.Done {
		t.Fatalf("expected final page to be marked done")
	}
	if len(rest.Envelopes) != 3 {
		t.Fatalf("remaining envelopes = %d, want 3", len(rest.Envelopes))
	}
}

func TestWalletViewNullifierStatus(t *testing.T) {
	cfg := newTestLedgerConfig(t)
	led, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer led.Close()

	view := NewWalletView(led)
	status := view.NullifierStatus([]Nullifier{{0x01}, {0x02}})
	if status[0] || status[1] {
		t.Fatalf("expected unspent nullifiers to report false")
	}
}

func TestWalletViewAnchorWindowTracksLedgerRoot(t *testing.T) {
	cfg := newTestLedgerConfig(t)
	addr, _ := newTestShieldedAddress(t)
	cfg.GenesisBlock = buildCoinbaseBlock(t, 0, addr, 1)
	led, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer led.Close()

	view := NewWalletView(led)
	window := view.AnchorWindow()
	if len(window) != 1 {
		t.Fatalf("anchor window len = %d, want 1", len(window))
	}
	if !window[0].Equal(view.CurrentRoot()) {
		t.Fatalf("anchor window tip does not match current root")
	}
}
