package services

import (
	"encoding/hex"
	"fmt"

	core "synthron-ledger/core"
)

// WalletService wraps the ledger's read-only wallet view for the HTTP layer:
// ciphertext scanning, nullifier status, anchor windows and pool balances.
// It holds no private key material; note decryption happens client-side.
type WalletService struct {
	view   *core.WalletView
	ledger *core.Ledger
}

func NewService(ledger *core.Ledger) *WalletService {
	return &WalletService{view: core.NewWalletView(ledger), ledger: ledger}
}

func (ws *WalletService) ScanCiphertexts(from, pageSize uint64) (core.CiphertextPage, error) {
	return ws.view.ScanCiphertexts(from, pageSize)
}

// ScanCommitments returns a page of commitments hex-encoded for JSON
// transport; commitments[i] is the leaf at tree index startIndex+i.
func (ws *WalletService) ScanCommitments(from, pageSize uint64) (startIndex uint64, commitments []string, nextIndex uint64, done bool, err error) {
	page, err := ws.view.ScanCommitments(from, pageSize)
	if err != nil {
		return 0, nil, 0, false, err
	}
	out := make([]string, len(page.Commitments))
	for i, c := range page.Commitments {
		out[i] = hex.EncodeToString(c[:])
	}
	return page.StartIndex, out, page.NextIndex, page.Done, nil
}

// NullifierStatus accepts hex-encoded nullifiers and reports spent status for
// each, in the same order.
func (ws *WalletService) NullifierStatus(hexNullifiers []string) ([]bool, error) {
	nulls := make([]core.Nullifier, len(hexNullifiers))
	for i, h := range hexNullifiers {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("nullifier %d: %w", i, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("nullifier %d: want 32 bytes, got %d", i, len(raw))
		}
		copy(nulls[i][:], raw)
	}
	return ws.view.NullifierStatus(nulls), nil
}

func (ws *WalletService) AnchorWindow() []string {
	window := ws.view.AnchorWindow()
	out := make([]string, len(window))
	for i, r := range window {
		b := r.Bytes()
		out[i] = hex.EncodeToString(b[:])
	}
	return out
}

func (ws *WalletService) CurrentRoot() string {
	b := ws.view.CurrentRoot().Bytes()
	return hex.EncodeToString(b[:])
}

func (ws *WalletService) LatestHeight() uint64 {
	return ws.view.LatestHeight()
}

func (ws *WalletService) PoolBalance(assetID uint64) string {
	return ws.view.PoolBalance(assetID)
}

func (ws *WalletService) AuthenticationPath(index uint64) ([]string, error) {
	path, ok := ws.view.AuthenticationPath(index)
	if !ok {
		return nil, fmt.Errorf("no authentication path for leaf index %d", index)
	}
	out := make([]string, len(path))
	for i, f := range path {
		b := f.Bytes()
		out[i] = hex.EncodeToString(b[:])
	}
	return out, nil
}

func (ws *WalletService) Block(height uint64) (*core.Block, error) {
	return ws.ledger.GetBlock(height)
}
