package core

// common_structs.go – centralised struct and protocol-constant definitions
// referenced across this package, in the spirit of the original file this
// one replaces: declare shared data shapes once so the rest of the package
// does not redeclare them.

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

//---------------------------------------------------------------------
// Protocol constants — a hard fork to change any of these.
//---------------------------------------------------------------------

const (
	// MerkleDepth is the commitment tree's fixed depth D, shared with the
	// proving circuit. A mismatch here is a consensus break.
	MerkleDepth uint8 = 32

	// RootsWindow (W) bounds how many distinct past roots spend proofs may
	// anchor to. A few dozen blocks trades wallet flexibility against the
	// size of the anchor-validity set.
	RootsWindow = 120

	// MaxTransfersPerBlock rate-limits proof verification cost per block.
	MaxTransfersPerBlock = 512

	// KEMCiphertextSize is the fixed size of an ML-KEM-768 encapsulation.
	KEMCiphertextSize = 1088

	// NotePayloadSize and MemoPayloadSize are the constant-time padded
	// lengths of the two AEAD-encrypted sections' *plaintext*, before the
	// AEAD authentication tag is appended.
	NotePayloadSize = 128
	MemoPayloadSize = 256

	// aeadTagSize is the Poly1305 tag appended by chacha20poly1305 to each
	// of the two separately-encrypted sections.
	aeadTagSize = 16

	noteCipherSize = NotePayloadSize + aeadTagSize
	memoCipherSize = MemoPayloadSize + aeadTagSize

	// envelopeHeaderSize is version(1) + diversifier_index(4) + note_len(2)
	// + memo_len(2).
	envelopeHeaderSize = 9

	// CiphertextPayloadSize is the AEAD-protected portion of the envelope,
	// excluding the KEM ciphertext blob.
	CiphertextPayloadSize = envelopeHeaderSize + noteCipherSize + memoCipherSize

	// EnvelopeSize is the fixed total size of an encrypted note envelope;
	// validators reject extrinsics with any other length.
	EnvelopeSize = KEMCiphertextSize + CiphertextPayloadSize

	// AssetCount bounds the number of distinct asset ids the pool tracks.
	AssetCount = 256

	// ProtocolVersion is stamped on every block header; a bump retires old
	// wire formats.
	ProtocolVersion uint16 = 1
)

//---------------------------------------------------------------------
// Identifiers
//---------------------------------------------------------------------

// Hash is a 32-byte cryptographic digest, used for block hashes.
type Hash [32]byte

// Hex returns the lowercase hex encoding of h.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// Nullifier is the 32-byte spend-time observable revealed when a note is spent.
type Nullifier [32]byte

// Hex returns the lowercase hex encoding of n.
func (n Nullifier) Hex() string { return hex.EncodeToString(n[:]) }

//---------------------------------------------------------------------
// Block structures
//---------------------------------------------------------------------

// BlockHeader carries the fields needed to thread blocks together and to
// stamp each with the protocol version in force when it was produced.
type BlockHeader struct {
	Height    uint64 `json:"height"`
	Timestamp int64  `json:"timestamp"`
	PrevHash  Hash   `json:"prev_hash"`
	Version   uint16 `json:"version"`
}

// Block is the unit of ledger application: exactly one mandatory coinbase
// inherent followed by zero or more shielded transfer bundles, applied in
// their listed order. There are no transparent transactions on this chain —
// every value unit lives in the shielded pool from genesis.
type Block struct {
	Header    BlockHeader       `json:"header"`
	Coinbase  *CoinbaseInherent `json:"coinbase"`
	Transfers []*TransferBundle `json:"transfers"`
}

// Hash returns the block hash used to chain headers together. Header
// hashing is plain off-circuit bookkeeping — not a value the proving
// circuit ever reasons about — so it uses an ordinary digest rather than
// the algebraic sponge reserved for commitments/nullifiers/Merkle nodes.
func (b *Block) Hash() Hash {
	h := sha256.New()
	var buf [8 + 8 + 2]byte
	binary.BigEndian.PutUint64(buf[0:8], b.Header.Height)
	binary.BigEndian.PutUint64(buf[8:16], uint64(b.Header.Timestamp))
	binary.BigEndian.PutUint16(buf[16:18], b.Header.Version)
	h.Write(buf[:])
	h.Write(b.Header.PrevHash[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
