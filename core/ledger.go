package core

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// LedgerConfig configures a new or reopened ledger instance. WALPath and
// SnapshotPath keep the WAL and snapshot responsibilities split: the WAL is the
// append-only log of applied blocks, replayed on startup; the snapshot is
// a periodic full dump that lets the WAL be truncated. DataDir is new:
// it is the directory of the pebble store backing the commitment tree's
// leaves, the nullifier set, the ciphertext log and the per-asset pool
// balances — all of which can grow far larger than comfortably fits in a
// single JSON snapshot.
type LedgerConfig struct {
	DataDir          string
	WALPath          string
	SnapshotPath     string
	SnapshotInterval int
	ArchivePath      string
	PruneInterval    int
	GenesisBlock     *Block
	Verifier         ProofVerifier
}

// Ledger is the shielded-pool state machine: a commitment tree, a
// recent-roots window, a nullifier set, a ciphertext log and per-asset
// pool balances, advanced one block at a time. Every block is exactly one
// coinbase inherent followed by zero or more transfer bundles, applied in
// order; either the whole block applies or none of it does.
type Ledger struct {
	mu sync.RWMutex

	tree    *CommitmentTree
	roots   []F
	rootSet map[F]struct{}

	nullifiers      map[Nullifier]struct{}
	ciphertextCount uint64

	balances map[uint64]*uint256.Int

	blocks     []*Block
	blockIndex map[Hash]*Block

	store *pebble.DB

	walFile          *os.File
	snapshotPath     string
	snapshotInterval int
	archivePath      string
	pruneInterval    int

	verifier ProofVerifier
}

var (
	keyMetaHeight = []byte("meta:height")
	keyMetaRoots  = []byte("meta:roots")
)

func leafKey(index uint64) []byte {
	k := make([]byte, 5+8)
	copy(k, "leaf:")
	binary.BigEndian.PutUint64(k[5:], index)
	return k
}

func nullifierKey(n Nullifier) []byte {
	k := make([]byte, 5+32)
	copy(k, "null:")
	copy(k[5:], n[:])
	return k
}

func ciphertextKey(index uint64) []byte {
	k := make([]byte, 3+8)
	copy(k, "ct:")
	binary.BigEndian.PutUint64(k[3:], index)
	return k
}

func balanceKey(assetID uint64) []byte {
	k := make([]byte, 4+8)
	copy(k, "bal:")
	binary.BigEndian.PutUint64(k[4:], assetID)
	return k
}

// NewLedger opens (or creates) the pebble store at cfg.DataDir and the WAL
// at cfg.WALPath, replays any blocks recorded in the WAL beyond what the
// pebble store already reflects, and optionally applies a genesis block.
func NewLedger(cfg LedgerConfig) (l *Ledger, err error) {
	store, err := pebble.Open(cfg.DataDir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("ledger: open pebble store: %w", err)
	}
	defer func() {
		if err != nil {
			_ = store.Close()
		}
	}()

	wal, err := os.OpenFile(cfg.WALPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ledger: open WAL: %w", err)
	}
	defer func() {
		if err != nil {
			_ = wal.Close()
		}
	}()

	l = &Ledger{
		tree:             NewCommitmentTree(MerkleDepth),
		rootSet:          make(map[F]struct{}),
		nullifiers:       make(map[Nullifier]struct{}),
		balances:         make(map[uint64]*uint256.Int),
		blockIndex:       make(map[Hash]*Block),
		store:            store,
		walFile:          wal,
		snapshotPath:     cfg.SnapshotPath,
		snapshotInterval: cfg.SnapshotInterval,
		archivePath:      cfg.ArchivePath,
		pruneInterval:    cfg.PruneInterval,
		verifier:         cfg.Verifier,
	}

	appliedHeight, err := l.readMetaHeight()
	if err != nil {
		return nil, err
	}
	if err = l.loadFromStore(); err != nil {
		return nil, err
	}
	if err = l.replayWAL(appliedHeight); err != nil {
		return nil, err
	}

	if cfg.GenesisBlock != nil && len(l.blocks) == 0 {
		if err = l.applyBlockLocked(context.Background(), cfg.GenesisBlock, true); err != nil {
			return nil, err
		}
		logrus.Infof("ledger: loaded genesis block height %d", cfg.GenesisBlock.Header.Height)
	}
	return l, nil
}

// OpenLedger opens a ledger rooted at the given directory, using the
// conventional file layout dir/pebble, dir/ledger.wal and dir/ledger.snap.
func OpenLedger(dir string) (*Ledger, error) {
	cfg := LedgerConfig{
		DataDir:      filepath.Join(dir, "pebble"),
		WALPath:      filepath.Join(dir, "ledger.wal"),
		SnapshotPath: filepath.Join(dir, "ledger.snap"),
	}
	return NewLedger(cfg)
}

// loadFromStore rebuilds in-memory caches (tree, nullifier set, roots
// window, balances, ciphertext count) from the pebble store; the applied
// height marker is read separately by readMetaHeight. It is called
// once, at startup, before any WAL replay.
func (l *Ledger) loadFromStore() error {
	iter, err := l.store.NewIter(&pebble.IterOptions{LowerBound: []byte("leaf:"), UpperBound: []byte("leaf;")})
	if err != nil {
		return fmt.Errorf("ledger: iterate leaves: %w", err)
	}
	leaves := make([]F, 0)
	for valid := iter.First(); valid; valid = iter.Next() {
		var buf [32]byte
		copy(buf[:], iter.Value())
		f, err := FieldFromBytes(buf)
		if err != nil {
			iter.Close()
			return fmt.Errorf("ledger: decode leaf: %w", err)
		}
		leaves = append(leaves, f)
	}
	if err := iter.Close(); err != nil {
		return err
	}
	if _, err := l.tree.Extend(leaves); err != nil {
		return fmt.Errorf("ledger: rebuild tree: %w", err)
	}

	nullIter, err := l.store.NewIter(&pebble.IterOptions{LowerBound: []byte("null:"), UpperBound: []byte("null;")})
	if err != nil {
		return fmt.Errorf("ledger: iterate nullifiers: %w", err)
	}
	for valid := nullIter.First(); valid; valid = nullIter.Next() {
		var n Nullifier
		copy(n[:], nullIter.Key()[5:])
		l.nullifiers[n] = struct{}{}
	}
	if err := nullIter.Close(); err != nil {
		return err
	}

	balIter, err := l.store.NewIter(&pebble.IterOptions{LowerBound: []byte("bal:"), UpperBound: []byte("bal;")})
	if err != nil {
		return fmt.Errorf("ledger: iterate balances: %w", err)
	}
	for valid := balIter.First(); valid; valid = balIter.Next() {
		assetID := binary.BigEndian.Uint64(balIter.Key()[4:])
		bal := new(uint256.Int).SetBytes(balIter.Value())
		l.balances[assetID] = bal
	}
	if err := balIter.Close(); err != nil {
		return err
	}

	if raw, closer, err := l.store.Get(keyMetaRoots); err == nil {
		var roots [][32]byte
		if jerr := json.Unmarshal(raw, &roots); jerr != nil {
			closer.Close()
			return fmt.Errorf("ledger: decode roots window: %w", jerr)
		}
		closer.Close()
		for _, rb := range roots {
			f, ferr := FieldFromBytes(rb)
			if ferr != nil {
				return fmt.Errorf("ledger: decode root: %w", ferr)
			}
			l.roots = append(l.roots, f)
			l.rootSet[f] = struct{}{}
		}
	} else if err != pebble.ErrNotFound {
		return fmt.Errorf("ledger: read roots window: %w", err)
	}

	l.ciphertextCount = l.countCiphertexts()
	return nil
}

func (l *Ledger) countCiphertexts() uint64 {
	iter, err := l.store.NewIter(&pebble.IterOptions{LowerBound: []byte("ct:"), UpperBound: []byte("ct;")})
	if err != nil {
		return 0
	}
	defer iter.Close()
	var n uint64
	for valid := iter.First(); valid; valid = iter.Next() {
		n++
	}
	return n
}

func (l *Ledger) readMetaHeight() (uint64, error) {
	raw, closer, err := l.store.Get(keyMetaHeight)
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger: read applied height: %w", err)
	}
	defer closer.Close()
	return binary.BigEndian.Uint64(raw), nil
}

// replayWAL re-applies every block recorded in the WAL beyond the height
// already reflected in the pebble store. This lets the ledger recover
// blocks that were durably logged to the WAL but whose pebble batch never
// committed (a crash between the two writes).
func (l *Ledger) replayWAL(appliedHeight uint64) error {
	if _, err := l.walFile.Seek(0, 0); err != nil {
		return err
	}
	scanner := bufio.NewScanner(l.walFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var blk Block
		if err := json.Unmarshal(scanner.Bytes(), &blk); err != nil {
			return fmt.Errorf("ledger: WAL unmarshal: %w", err)
		}
		if blk.Header.Height < appliedHeight {
			// Already reflected in the pebble store (tree/nullifiers/
			// balances); only the in-memory block log needs rehydrating.
			l.adoptBlockMetaOnly(&blk)
			continue
		}
		if err := l.applyBlockLocked(context.Background(), &blk, false); err != nil {
			return fmt.Errorf("ledger: WAL replay height %d: %w", blk.Header.Height, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ledger: WAL scan: %w", err)
	}
	if _, err := l.walFile.Seek(0, 2); err != nil {
		return err
	}
	return nil
}

// adoptBlockMetaOnly appends a block to the in-memory chain log without
// re-staging its effects, used when the pebble store's applied-height
// marker shows the block was already durably committed there.
func (l *Ledger) adoptBlockMetaOnly(block *Block) {
	blk := *block
	l.blocks = append(l.blocks, &blk)
	l.blockIndex[blk.Hash()] = &blk
}

// ApplyBlock validates and applies a block to the ledger, persisting it to
// the WAL and pebble store. It runs the stateless proof-gateway pipeline
// over all transfer bundles concurrently before taking the ledger lock, so
// that the (usually dominant) proof-verification cost of a rejected block
// is never paid while holding it.
func (l *Ledger) ApplyBlock(ctx context.Context, block *Block) error {
	if block.Coinbase == nil {
		return ErrMissingCoinbase
	}
	if len(block.Transfers) > MaxTransfersPerBlock {
		return ErrTooManyTransfers
	}
	if err := verifyBundlesStateless(ctx, l, l.verifier, block.Transfers); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyBlockLocked(ctx, block, true)
}

// applyBlockLocked applies block assuming l.mu is already held. persist
// controls whether the block is appended to the WAL and whether a
// snapshot/prune pass runs afterwards; replay from an existing WAL passes
// persist=false to avoid re-appending blocks already on disk.
//
// Either the whole block applies or none of it does: staging runs against a
// stagingCtx that records everything it touches in l's in-memory state, and
// any staging error rolls every one of those mutations back before
// returning, so a rejected block — including one rejected partway through
// its transfer list — never leaves the tree, nullifier set, balances or
// ciphertext count advanced.
func (l *Ledger) applyBlockLocked(ctx context.Context, block *Block, persist bool) error {
	expected := uint64(0)
	if n := len(l.blocks); n > 0 {
		expected = l.blocks[n-1].Header.Height + 1
	}
	if block.Header.Height != expected {
		return fmt.Errorf("ledger: invalid block height: expected %d, got %d", expected, block.Header.Height)
	}

	staging := newStagingCtx(l)

	if err := staging.stageCoinbase(block.Coinbase, block.Header.Height); err != nil {
		staging.rollback()
		return err
	}
	for _, bundle := range block.Transfers {
		if err := staging.stageTransfer(bundle); err != nil {
			staging.rollback()
			return err
		}
	}

	root := l.tree.Root()
	l.pushRoot(root)
	if err := l.stageRootsWindow(staging.batch); err != nil {
		staging.rollback()
		return err
	}
	if err := l.stageMetaHeight(staging.batch, block.Header.Height+1); err != nil {
		staging.rollback()
		return err
	}

	if err := staging.batch.Commit(pebble.Sync); err != nil {
		staging.rollback()
		return fmt.Errorf("ledger: commit batch: %w", err)
	}

	l.blocks = append(l.blocks, block)
	l.blockIndex[block.Hash()] = block

	if persist {
		data, err := json.Marshal(block)
		if err != nil {
			return fmt.Errorf("ledger: marshal block: %w", err)
		}
		if _, err := l.walFile.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("ledger: write WAL: %w", err)
		}
		if err := l.walFile.Sync(); err != nil {
			return fmt.Errorf("ledger: sync WAL: %w", err)
		}
		if l.snapshotInterval > 0 && len(l.blocks)%l.snapshotInterval == 0 {
			if err := l.snapshot(); err != nil {
				logrus.Errorf("ledger: snapshot error: %v", err)
			}
		}
		if err := l.prune(); err != nil {
			logrus.Errorf("ledger: prune error: %v", err)
		}
	}

	logrus.Infof("ledger: block %d applied; root=%x", block.Header.Height, root.Bytes())
	return nil
}

// stagingCtx stages one block's effects: it writes to a pebble batch that
// has not yet committed, while also applying the corresponding in-memory
// mutations to l immediately (so a later bundle in the same block sees the
// effects of an earlier one — e.g. a cross-bundle duplicate nullifier).
// Every mutation it makes is recorded so rollback can undo exactly those
// mutations, and nothing else, if staging fails before the batch commits.
type stagingCtx struct {
	ledger *Ledger
	batch  *pebble.Batch

	treeCheckpoint treeCheckpoint

	ciphertextCountBefore uint64
	rootsBefore           []F

	balanceBackup  map[uint64]*uint256.Int
	balanceTouched map[uint64]bool

	addedNullifiers []Nullifier
}

func newStagingCtx(l *Ledger) *stagingCtx {
	return &stagingCtx{
		ledger:                l,
		batch:                 l.store.NewBatch(),
		treeCheckpoint:        l.tree.checkpoint(),
		ciphertextCountBefore: l.ciphertextCount,
		rootsBefore:           append([]F(nil), l.roots...),
		balanceBackup:         make(map[uint64]*uint256.Int),
		balanceTouched:        make(map[uint64]bool),
	}
}

// rollback undoes every in-memory mutation staged so far, restoring l to
// exactly the state it was in when newStagingCtx was called. It never
// touches the pebble batch itself: that batch is simply discarded
// uncommitted by the caller.
func (s *stagingCtx) rollback() {
	l := s.ledger
	l.tree.restore(s.treeCheckpoint)
	l.ciphertextCount = s.ciphertextCountBefore

	l.roots = s.rootsBefore
	l.rootSet = make(map[F]struct{}, len(s.rootsBefore))
	for _, r := range s.rootsBefore {
		l.rootSet[r] = struct{}{}
	}

	for assetID, existed := range s.balanceTouched {
		if existed {
			l.balances[assetID] = s.balanceBackup[assetID]
		} else {
			delete(l.balances, assetID)
		}
	}

	for _, n := range s.addedNullifiers {
		delete(l.nullifiers, n)
	}
}

// backupBalance records assetID's pre-block balance (or its absence) the
// first time this block touches it, so rollback can restore it exactly.
func (s *stagingCtx) backupBalance(assetID uint64) {
	if _, done := s.balanceTouched[assetID]; done {
		return
	}
	if b, ok := s.ledger.balances[assetID]; ok {
		s.balanceTouched[assetID] = true
		s.balanceBackup[assetID] = b
	} else {
		s.balanceTouched[assetID] = false
	}
}

// stageCoinbase validates the block's coinbase inherent and stages its
// effects (new commitment leaf, ciphertext, pool credit).
func (s *stagingCtx) stageCoinbase(inherent *CoinbaseInherent, height uint64) error {
	if err := validateCoinbase(inherent, height); err != nil {
		return err
	}
	commitment := coinbaseCommitment(inherent)
	if err := s.appendLeaf(commitment); err != nil {
		return err
	}
	if err := s.appendCiphertext(inherent.Envelope); err != nil {
		return err
	}
	return s.creditBalance(NativeAssetID, inherent.Amount)
}

// stageTransfer runs the ledger-state-dependent gateway checks (anchor
// freshness, nullifier novelty) and, if they pass, stages the bundle's
// effects. The stateless checks (envelope shape, binding signature,
// external proof) already ran in ApplyBlock before the lock was taken.
func (s *stagingCtx) stageTransfer(bundle *TransferBundle) error {
	l := s.ledger
	anchor, err := FieldFromBytes(bundle.Anchor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnchor, err)
	}
	if _, ok := l.rootSet[anchor]; !ok {
		return ErrInvalidAnchor
	}
	for _, n := range bundle.Nullifiers {
		if _, spent := l.nullifiers[n]; spent {
			return ErrDuplicateNullifier
		}
	}

	if err := s.debitBalance(bundle.AssetID, bundle.Fee); err != nil {
		return err
	}
	for _, n := range bundle.Nullifiers {
		if err := s.spendNullifier(n); err != nil {
			return err
		}
	}
	for _, c := range bundle.Commitments {
		f, err := FieldFromBytes(c)
		if err != nil {
			return fmt.Errorf("%w: bad commitment encoding: %v", ErrMalformedEnvelope, err)
		}
		if err := s.appendLeaf(f); err != nil {
			return err
		}
	}
	for _, env := range bundle.Envelopes {
		if err := s.appendCiphertext(env); err != nil {
			return err
		}
	}
	return nil
}

func (s *stagingCtx) appendLeaf(leaf F) error {
	index, _, err := s.ledger.tree.Append(leaf)
	if err != nil {
		return err
	}
	b := leaf.Bytes()
	return s.batch.Set(leafKey(index), b[:], nil)
}

func (s *stagingCtx) appendCiphertext(envelope []byte) error {
	if len(envelope) != EnvelopeSize {
		return ErrMalformedEnvelope
	}
	index := s.ledger.ciphertextCount
	if err := s.batch.Set(ciphertextKey(index), envelope, nil); err != nil {
		return err
	}
	s.ledger.ciphertextCount++
	return nil
}

func (s *stagingCtx) spendNullifier(n Nullifier) error {
	s.ledger.nullifiers[n] = struct{}{}
	s.addedNullifiers = append(s.addedNullifiers, n)
	return s.batch.Set(nullifierKey(n), []byte{1}, nil)
}

func (s *stagingCtx) creditBalance(assetID, amount uint64) error {
	s.backupBalance(assetID)
	l := s.ledger
	bal := l.balanceOrZero(assetID)
	bal = new(uint256.Int).Add(bal, uint256.NewInt(amount))
	l.balances[assetID] = bal
	return s.batch.Set(balanceKey(assetID), bal.Bytes(), nil)
}

func (s *stagingCtx) debitBalance(assetID, amount uint64) error {
	s.backupBalance(assetID)
	l := s.ledger
	bal := l.balanceOrZero(assetID)
	delta := uint256.NewInt(amount)
	if bal.Lt(delta) {
		return ErrPoolUnderflow
	}
	bal = new(uint256.Int).Sub(bal, delta)
	l.balances[assetID] = bal
	return s.batch.Set(balanceKey(assetID), bal.Bytes(), nil)
}

func (l *Ledger) balanceOrZero(assetID uint64) *uint256.Int {
	if b, ok := l.balances[assetID]; ok {
		return b
	}
	return uint256.NewInt(0)
}

// pushRoot records root as the new tip of the recent-roots window,
// evicting the oldest entry once the window exceeds RootsWindow.
func (l *Ledger) pushRoot(root F) {
	l.roots = append(l.roots, root)
	l.rootSet[root] = struct{}{}
	if len(l.roots) > RootsWindow {
		evicted := l.roots[0]
		l.roots = l.roots[1:]
		delete(l.rootSet, evicted)
	}
}

func (l *Ledger) stageRootsWindow(batch *pebble.Batch) error {
	encoded := make([][32]byte, len(l.roots))
	for i, r := range l.roots {
		encoded[i] = r.Bytes()
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("ledger: encode roots window: %w", err)
	}
	return batch.Set(keyMetaRoots, data, nil)
}

func (l *Ledger) stageMetaHeight(batch *pebble.Batch, height uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return batch.Set(keyMetaHeight, buf[:], nil)
}

// Root returns the ledger's current commitment-tree root.
func (l *Ledger) Root() F {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.Root()
}

// RecentRoots returns a copy of the current anchor-validity window, oldest
// first.
func (l *Ledger) RecentRoots() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]F, len(l.roots))
	copy(out, l.roots)
	return out
}

// IsNullifierSpent reports whether n has already been revealed on-chain.
func (l *Ledger) IsNullifierSpent(n Nullifier) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.nullifiers[n]
	return ok
}

// HasRoot reports whether root is still within the recent-roots window.
// It takes only the read lock and serves as a cheap pre-check: a bundle
// anchored to a root this reports true for may still be rejected later by
// the authoritative, write-locked recheck in stageTransfer if the root is
// evicted from the window between the two calls.
func (l *Ledger) HasRoot(root F) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.rootSet[root]
	return ok
}

// PoolBalance returns the current backing balance for assetID.
func (l *Ledger) PoolBalance(assetID uint64) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(uint256.Int).Set(l.balanceOrZero(assetID))
}

// LastHeight returns the height of the most recently applied block, or 0
// if the ledger is empty.
func (l *Ledger) LastHeight() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return 0
	}
	return l.blocks[len(l.blocks)-1].Header.Height
}

// GetBlock returns the block at the given height.
func (l *Ledger) GetBlock(height uint64) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return nil, fmt.Errorf("ledger: block %d not found", height)
	}
	first := l.blocks[0].Header.Height
	if height < first || height-first >= uint64(len(l.blocks)) {
		return nil, fmt.Errorf("ledger: block %d not found", height)
	}
	return l.blocks[height-first], nil
}

// BlockByHash fetches a block by its header hash.
func (l *Ledger) BlockByHash(h Hash) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	blk, ok := l.blockIndex[h]
	if !ok {
		return nil, fmt.Errorf("ledger: block %s not found", h.Hex())
	}
	return blk, nil
}

// Ciphertext returns the envelope at the given global ciphertext-log
// position.
func (l *Ledger) Ciphertext(index uint64) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	raw, closer, err := l.store.Get(ciphertextKey(index))
	if err != nil {
		return nil, fmt.Errorf("ledger: ciphertext %d not found: %w", index, err)
	}
	defer closer.Close()
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// CiphertextCount returns the number of ciphertexts ever logged.
func (l *Ledger) CiphertextCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ciphertextCount
}

// Commitment returns the canonical 32-byte encoding of the commitment leaf
// at the given tree index, read from the pebble key "leaf:" followed by the
// 8-byte big-endian index. The store does not use commitments/<index> style
// key names.
func (l *Ledger) Commitment(index uint64) ([32]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	raw, closer, err := l.store.Get(leafKey(index))
	if err != nil {
		return [32]byte{}, fmt.Errorf("ledger: commitment %d not found: %w", index, err)
	}
	defer closer.Close()
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}

// CommitmentCount returns the number of commitments ever appended to the
// tree.
func (l *Ledger) CommitmentCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.LeafCount()
}

// AuthenticationPath returns the Merkle path for the leaf at index, for
// wallet-side spend-proof construction.
func (l *Ledger) AuthenticationPath(index uint64) ([]F, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.AuthenticationPath(index)
}

// snapshot serializes the ledger's block log to disk and truncates the
// WAL. Tree/nullifier/ciphertext/balance state is already durable in the
// pebble store and is not duplicated here.
func (l *Ledger) snapshot() error {
	f, err := os.Create(l.snapshotPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(l.blocks); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := l.walFile.Close(); err != nil {
		return err
	}
	wal, err := os.Create(l.walFile.Name())
	if err != nil {
		return err
	}
	l.walFile = wal
	logrus.Infof("ledger: snapshot saved to %s; WAL truncated", l.snapshotPath)
	return nil
}

// prune archives old blocks beyond pruneInterval to archivePath and
// rewrites the WAL to hold only the retained tail. Pruning never touches
// pebble state: the commitment tree, nullifier set and balances remain
// fully available regardless of how much block history is retained.
func (l *Ledger) prune() error {
	if l.pruneInterval <= 0 || len(l.blocks) <= l.pruneInterval {
		return nil
	}
	toArchive := len(l.blocks) - l.pruneInterval
	if l.archivePath != "" {
		f, err := os.OpenFile(l.archivePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		gz := gzip.NewWriter(f)
		for i := 0; i < toArchive; i++ {
			data, err := json.Marshal(l.blocks[i])
			if err != nil {
				gz.Close()
				f.Close()
				return err
			}
			if _, err := gz.Write(append(data, '\n')); err != nil {
				gz.Close()
				f.Close()
				return err
			}
		}
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	l.blocks = l.blocks[toArchive:]
	return l.rewriteWAL()
}

func (l *Ledger) rewriteWAL() error {
	if err := l.walFile.Close(); err != nil {
		return err
	}
	wal, err := os.Create(l.walFile.Name())
	if err != nil {
		return err
	}
	l.walFile = wal
	for _, blk := range l.blocks {
		data, err := json.Marshal(blk)
		if err != nil {
			return err
		}
		if _, err := l.walFile.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return l.walFile.Sync()
}

// Close releases the WAL file handle and the pebble store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var walErr, storeErr error
	if l.walFile != nil {
		walErr = l.walFile.Close()
	}
	if l.store != nil {
		storeErr = l.store.Close()
	}
	if walErr != nil {
		return walErr
	}
	return storeErr
}
