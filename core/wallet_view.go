package core

// wallet_view.go exposes a read-only, paginated view over ledger state for
// wallet sync: scanning ciphertexts and commitments in fixed-size pages,
// checking nullifier status in bulk, and fetching the current anchor
// window. Wallets never touch the pebble store directly; they only ever see
// these accessors, the same surface the HTTP layer wraps.

import "fmt"

// DefaultPageSize bounds how many ciphertexts or commitments a single
// wallet-sync page returns, keeping a single scan request's cost bounded
// regardless of how far behind a wallet has fallen.
const DefaultPageSize = 256

// CiphertextPage is one page of the encrypted-note log, along with the
// cursor a wallet should request next.
type CiphertextPage struct {
	StartIndex uint64
	Envelopes  [][]byte
	NextIndex  uint64
	Done       bool
}

// CommitmentPage is one page of the commitment log in canonical 32-byte
// encoding, along with the cursor a wallet should request next. Entries
// carry no index of their own: Commitments[i] is the leaf at tree index
// StartIndex+i.
type CommitmentPage struct {
	StartIndex  uint64
	Commitments [][32]byte
	NextIndex   uint64
	Done        bool
}

// WalletView is a thin, read-only façade over a Ledger for wallet sync and
// block-explorer style queries. It holds no state of its own.
type WalletView struct {
	ledger *Ledger
}

// NewWalletView wraps ledger for read-only wallet access.
func NewWalletView(ledger *Ledger) *WalletView {
	return &WalletView{ledger: ledger}
}

// ScanCiphertexts returns up to pageSize envelopes starting at fromIndex, for
// a wallet trial-decrypting its way forward through the note log. pageSize
// of 0 uses DefaultPageSize.
func (w *WalletView) ScanCiphertexts(fromIndex uint64, pageSize uint64) (CiphertextPage, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	total := w.ledger.CiphertextCount()
	if fromIndex > total {
		return CiphertextPage{}, fmt.Errorf("wallet view: start index %d beyond ciphertext count %d", fromIndex, total)
	}

	page := CiphertextPage{StartIndex: fromIndex}
	idx := fromIndex
	for idx < total && uint64(len(page.Envelopes)) < pageSize {
		env, err := w.ledger.Ciphertext(idx)
		if err != nil {
			return CiphertextPage{}, err
		}
		page.Envelopes = append(page.Envelopes, env)
		idx++
	}
	page.NextIndex = idx
	page.Done = idx >= total
	return page, nil
}

// ScanCommitments returns up to pageSize commitments in canonical encoding,
// in tree-index order starting at fromIndex, for a wallet rebuilding its own view of
// the commitment tree. pageSize of 0 uses DefaultPageSize. The canonical
// F -> [32]byte encoding returned here is stable across rereads, so a
// wallet can resume an interrupted scan from NextIndex.
func (w *WalletView) ScanCommitments(fromIndex uint64, pageSize uint64) (CommitmentPage, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	total := w.ledger.CommitmentCount()
	if fromIndex > total {
		return CommitmentPage{}, fmt.Errorf("wallet view: start index %d beyond commitment count %d", fromIndex, total)
	}

	page := CommitmentPage{StartIndex: fromIndex}
	idx := fromIndex
	for idx < total && uint64(len(page.Commitments)) < pageSize {
		c, err := w.ledger.Commitment(idx)
		if err != nil {
			return CommitmentPage{}, err
		}
		page.Commitments = append(page.Commitments, c)
		idx++
	}
	page.NextIndex = idx
	page.Done = idx >= total
	return page, nil
}

// NullifierStatus reports, for each requested nullifier, whether it has been
// revealed on-chain. The result slice is parallel to nullifiers.
func (w *WalletView) NullifierStatus(nullifiers []Nullifier) []bool {
	out := make([]bool, len(nullifiers))
	for i, n := range nullifiers {
		out[i] = w.ledger.IsNullifierSpent(n)
	}
	return out
}

// AnchorWindow returns the current recent-roots window a wallet may anchor
// a new spend proof to, newest-last.
func (w *WalletView) AnchorWindow() []F {
	return w.ledger.RecentRoots()
}

// CurrentRoot returns the ledger's current commitment-tree root.
func (w *WalletView) CurrentRoot() F {
	return w.ledger.Root()
}

// AuthenticationPath returns the Merkle path for the commitment at index, for
// constructing a spend proof over a note the wallet has already decrypted.
func (w *WalletView) AuthenticationPath(index uint64) ([]F, bool) {
	return w.ledger.AuthenticationPath(index)
}

// LatestHeight returns the height of the most recently applied block.
func (w *WalletView) LatestHeight() uint64 {
	return w.ledger.LastHeight()
}

// PoolBalance returns the current shielded-pool backing balance for assetID.
func (w *WalletView) PoolBalance(assetID uint64) string {
	return w.ledger.PoolBalance(assetID).String()
}
