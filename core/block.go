package core

// block.go defines the on-chain shapes carried by a block: the shielded
// address format, the mandatory coinbase inherent and the shielded transfer
// bundle consumed by the proof verification gateway. These byte layouts are
// a wire-protocol contract shared with the wallet and the block producer's
// encrypting node.

import (
	"encoding/binary"
	"fmt"
)

// PKEncSize is the size of the post-quantum KEM public key carried inside a
// shielded address (ML-KEM-768, see note.go).
const PKEncSize = 1184

// ShieldedAddressSize is the fixed size of a serialized ShieldedAddress:
// version(1) + diversifier_index(4) + pk_recipient(32) + pk_enc(PKEncSize).
const ShieldedAddressSize = 1 + 4 + 32 + PKEncSize

// ShieldedAddress is a recipient's published shielded address.
type ShieldedAddress struct {
	Version          uint8
	DiversifierIndex uint32
	PKRecipient      [32]byte
	PKEnc            [PKEncSize]byte
}

// Bytes serializes the address to its canonical on-chain form.
func (a ShieldedAddress) Bytes() []byte {
	out := make([]byte, ShieldedAddressSize)
	out[0] = a.Version
	binary.LittleEndian.PutUint32(out[1:5], a.DiversifierIndex)
	copy(out[5:37], a.PKRecipient[:])
	copy(out[37:], a.PKEnc[:])
	return out
}

// ParseShieldedAddress decodes the canonical on-chain form produced by Bytes.
func ParseShieldedAddress(b []byte) (ShieldedAddress, error) {
	if len(b) != ShieldedAddressSize {
		return ShieldedAddress{}, fmt.Errorf("shielded address: want %d bytes, got %d", ShieldedAddressSize, len(b))
	}
	var a ShieldedAddress
	a.Version = b[0]
	a.DiversifierIndex = binary.LittleEndian.Uint32(b[1:5])
	copy(a.PKRecipient[:], b[5:37])
	copy(a.PKEnc[:], b[37:])
	return a, nil
}

// CoinbaseInherent is the block's mandatory mint transition. It is not a
// signed user extrinsic and cannot be rejected for a bad signature; the
// runtime only verifies envelope length and recomputes the commitment
// deterministically from Seed.
type CoinbaseInherent struct {
	RecipientAddress ShieldedAddress
	Amount           uint64
	Seed             [32]byte
	Envelope         []byte // exactly EnvelopeSize bytes
}

// TransferBundle is a shielded transfer: an anchor, consumed-note
// nullifiers, produced-note commitments and their parallel ciphertext
// envelopes, a fee, an asset id, a binding public key and signature over
// the public inputs, and an opaque proof for the external verifier.
type TransferBundle struct {
	Anchor        [32]byte
	Nullifiers    []Nullifier
	Commitments   [][32]byte
	Envelopes     [][]byte
	Fee           uint64
	AssetID       uint64
	BindingPubKey []byte
	BindingSig    []byte
	Proof         []byte
}

// Encode serializes the bundle to its canonical wire form:
// anchor(32) ‖ nullifiers_len(4) ‖ nullifiers ‖ commitments_len(4) ‖
// commitments ‖ envelopes_len(4) ‖ envelopes ‖ fee(8) ‖ asset_id(8) ‖
// binding_pub_len(4) ‖ binding_pub ‖ binding_sig_len(4) ‖ binding_sig ‖
// proof_len(4) ‖ proof.
func (b *TransferBundle) Encode() []byte {
	size := 32 + 4 + len(b.Nullifiers)*32 + 4 + len(b.Commitments)*32 + 4 + len(b.Envelopes)*EnvelopeSize +
		8 + 8 + 4 + len(b.BindingPubKey) + 4 + len(b.BindingSig) + 4 + len(b.Proof)
	out := make([]byte, 0, size)

	out = append(out, b.Anchor[:]...)
	out = appendUint32(out, uint32(len(b.Nullifiers)))
	for _, n := range b.Nullifiers {
		out = append(out, n[:]...)
	}
	out = appendUint32(out, uint32(len(b.Commitments)))
	for _, c := range b.Commitments {
		out = append(out, c[:]...)
	}
	out = appendUint32(out, uint32(len(b.Envelopes)))
	for _, e := range b.Envelopes {
		out = append(out, e...)
	}
	out = appendUint64(out, b.Fee)
	out = appendUint64(out, b.AssetID)
	out = appendUint32(out, uint32(len(b.BindingPubKey)))
	out = append(out, b.BindingPubKey...)
	out = appendUint32(out, uint32(len(b.BindingSig)))
	out = append(out, b.BindingSig...)
	out = appendUint32(out, uint32(len(b.Proof)))
	out = append(out, b.Proof...)
	return out
}

func appendUint32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func appendUint64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}
