package core

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptNoteRoundTrip(t *testing.T) {
	addr, sk := newTestShieldedAddress(t)
	note := &NotePlaintext{
		Value:       1000,
		AssetID:     NativeAssetID,
		PKRecipient: addr.PKRecipient,
		Rho:         [32]byte{0x11},
		R:           [32]byte{0x22},
		Memo:        []byte("hello shielded pool"),
	}

	envelope, err := EncryptNote(note, addr)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if len(envelope) != EnvelopeSize {
		t.Fatalf("envelope size = %d, want %d", len(envelope), EnvelopeSize)
	}

	decoded, memo, err := DecryptNote(envelope, sk, addr.PKRecipient)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if decoded.Value != note.Value || decoded.AssetID != note.AssetID {
		t.Fatalf("decoded note mismatch: got %+v", decoded)
	}
	if decoded.Rho != note.Rho || decoded.R != note.R {
		t.Fatalf("decoded rho/r mismatch")
	}
	if !bytes.Equal(memo, note.Memo) {
		t.Fatalf("decoded memo = %q, want %q", memo, note.Memo)
	}
}

func TestDecryptNoteRejectsWrongLength(t *testing.T) {
	_, sk := newTestShieldedAddress(t)
	_, _, err := DecryptNote(make([]byte, EnvelopeSize-1), sk, [32]byte{})
	if !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("expected ErrDecryptionFailure, got %v", err)
	}
}

func TestDecryptNoteRejectsTamperedCiphertext(t *testing.T) {
	addr, sk := newTestShieldedAddress(t)
	note := &NotePlaintext{
		Value:       5,
		AssetID:     NativeAssetID,
		PKRecipient: addr.PKRecipient,
		Rho:         [32]byte{0x01},
		R:           [32]byte{0x02},
	}
	envelope, err := EncryptNote(note, addr)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	envelope[10] ^= 0xFF

	if _, _, err := DecryptNote(envelope, sk, addr.PKRecipient); err == nil {
		t.Fatalf("expected decryption of tampered envelope to fail")
	}
}

func TestNoteCommitmentDeterministic(t *testing.T) {
	note := &NotePlaintext{
		Value:       10,
		AssetID:     NativeAssetID,
		PKRecipient: [32]byte{0x01},
		Rho:         [32]byte{0x02},
		R:           [32]byte{0x03},
	}
	c1 := note.Commitment()
	c2 := note.Commitment()
	if !c1.Equal(c2) {
		t.Fatalf("commitment is not deterministic")
	}
}

func TestEncryptNoteRejectsOversizedMemo(t *testing.T) {
	addr, _ := newTestShieldedAddress(t)
	note := &NotePlaintext{
		Value: 1,
		Memo:  make([]byte, MemoPayloadSize+1),
	}
	if _, err := EncryptNote(note, addr); err == nil {
		t.Fatalf("expected error for oversized memo")
	}
}
