package core

// note.go derives a note's on-chain commitment and turns the note into a
// transport envelope via a hybrid post-quantum KEM+AEAD scheme. The KEM is
// ML-KEM-768 from cloudflare/circl; the AEAD is chacha20poly1305 from
// golang.org/x/crypto, promoted here to a direct dependency.

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
)

// kemScheme is the single concrete KEM algorithm for this protocol version;
// a version bump switches it atomically.
var kemScheme = schemes.ByName("ML-KEM-768")

// NotePlaintext is the private tuple behind a commitment. It is never
// stored on-chain in the clear.
type NotePlaintext struct {
	Value       uint64
	AssetID     uint64
	PKRecipient [32]byte
	Rho         [32]byte
	R           [32]byte
	Memo        []byte
}

// Commitment derives this note's on-chain commitment C.
func (n *NotePlaintext) Commitment() F {
	return noteCommitment(n.Value, n.AssetID, n.PKRecipient, n.Rho, n.R)
}

// notePayload serializes the fields needed to reconstruct the note
// (everything except the memo) into the fixed NotePayloadSize plaintext
// block, zero-padded. value/asset_id are little-endian u64s.
func (n *NotePlaintext) notePayload() ([]byte, error) {
	buf := make([]byte, NotePayloadSize)
	putUint64LE(buf[0:8], n.Value)
	putUint64LE(buf[8:16], n.AssetID)
	copy(buf[16:48], n.Rho[:])
	copy(buf[48:80], n.R[:])
	// buf[80:] stays zero padding.
	return buf, nil
}

func parseNotePayload(buf []byte, pkRecipient [32]byte) (*NotePlaintext, error) {
	if len(buf) != NotePayloadSize {
		return nil, fmt.Errorf("note payload: want %d bytes, got %d", NotePayloadSize, len(buf))
	}
	n := &NotePlaintext{PKRecipient: pkRecipient}
	n.Value = getUint64LE(buf[0:8])
	n.AssetID = getUint64LE(buf[8:16])
	copy(n.Rho[:], buf[16:48])
	copy(n.R[:], buf[48:80])
	return n, nil
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getUint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// EncryptNote runs the envelope encryption protocol: KEM encapsulation
// against the recipient's address, HKDF key derivation, and two separate
// AEAD encryptions (note, memo) bound to (version, diversifier_index) as
// associated data. Encapsulation randomness is drawn from the scheme's own
// internal source (crypto/rand); this is the only place real entropy
// enters an otherwise fully deterministic pool.
func EncryptNote(note *NotePlaintext, addr ShieldedAddress) ([]byte, error) {
	if len(note.Memo) > MemoPayloadSize {
		return nil, fmt.Errorf("note: memo exceeds %d bytes", MemoPayloadSize)
	}

	pk, err := kemScheme.UnmarshalBinaryPublicKey(addr.PKEnc[:])
	if err != nil {
		return nil, fmt.Errorf("note: unmarshal recipient KEM key: %w", err)
	}
	kemCt, sharedSecret, err := kemScheme.Encapsulate(pk)
	if err != nil {
		return nil, fmt.Errorf("note: kem encapsulate: %w", err)
	}

	aeadKey, nonceNote, nonceMemo, err := deriveEnvelopeKeys(sharedSecret)
	if err != nil {
		return nil, err
	}

	ad := associatedData(addr.Version, addr.DiversifierIndex)

	notePlain, err := note.notePayload()
	if err != nil {
		return nil, err
	}
	memoPlain := make([]byte, MemoPayloadSize)
	copy(memoPlain, note.Memo)

	aead, err := chacha20poly1305.New(aeadKey[:])
	if err != nil {
		return nil, fmt.Errorf("note: aead init: %w", err)
	}
	noteCipher := aead.Seal(nil, nonceNote[:], notePlain, ad)
	memoCipher := aead.Seal(nil, nonceMemo[:], memoPlain, ad)

	out := make([]byte, 0, EnvelopeSize)
	out = append(out, addr.Version)
	var diBuf [4]byte
	putUint32LE(diBuf[:], addr.DiversifierIndex)
	out = append(out, diBuf[:]...)
	var lenBuf [2]byte
	putUint16BE(lenBuf[:], uint16(len(noteCipher)))
	out = append(out, lenBuf[:]...)
	out = append(out, noteCipher...)
	putUint16BE(lenBuf[:], uint16(len(memoCipher)))
	out = append(out, lenBuf[:]...)
	out = append(out, memoCipher...)
	out = append(out, kemCt...)

	if len(out) != EnvelopeSize {
		return nil, fmt.Errorf("note: internal envelope size mismatch: got %d want %d", len(out), EnvelopeSize)
	}
	return out, nil
}

// DecryptNote inverts EncryptNote using the recipient's KEM private key. Any
// failure — wrong length, KEM decapsulation mismatch, AEAD verification
// failure — is reported as ErrDecryptionFailure: from a scanning wallet's
// point of view every one of these means "not my note". The caller supplies
// pkRecipient since it is not itself part of the encrypted payload.
func DecryptNote(envelope []byte, skEnc circlkem.PrivateKey, pkRecipient [32]byte) (*NotePlaintext, []byte, error) {
	if len(envelope) != EnvelopeSize {
		return nil, nil, fmt.Errorf("%w: wrong envelope length", ErrDecryptionFailure)
	}
	version := envelope[0]
	diversifier := getUint32LE(envelope[1:5])
	noteLen := getUint16BE(envelope[5:7])
	if int(noteLen) != noteCipherSize {
		return nil, nil, fmt.Errorf("%w: bad note section length", ErrDecryptionFailure)
	}
	noteCipher := envelope[7 : 7+noteCipherSize]
	off := 7 + noteCipherSize
	memoLen := getUint16BE(envelope[off : off+2])
	if int(memoLen) != memoCipherSize {
		return nil, nil, fmt.Errorf("%w: bad memo section length", ErrDecryptionFailure)
	}
	off += 2
	memoCipher := envelope[off : off+memoCipherSize]
	off += memoCipherSize
	kemCt := envelope[off:]
	if len(kemCt) != KEMCiphertextSize {
		return nil, nil, fmt.Errorf("%w: bad kem ciphertext length", ErrDecryptionFailure)
	}

	sharedSecret, err := kemScheme.Decapsulate(skEnc, kemCt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kem decapsulate: %v", ErrDecryptionFailure, err)
	}
	aeadKey, nonceNote, nonceMemo, err := deriveEnvelopeKeys(sharedSecret)
	if err != nil {
		return nil, nil, err
	}
	ad := associatedData(version, diversifier)

	aead, err := chacha20poly1305.New(aeadKey[:])
	if err != nil {
		return nil, nil, fmt.Errorf("note: aead init: %w", err)
	}
	notePlain, err := aead.Open(nil, nonceNote[:], noteCipher, ad)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: note aead open: %v", ErrDecryptionFailure, err)
	}
	memoPlain, err := aead.Open(nil, nonceMemo[:], memoCipher, ad)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: memo aead open: %v", ErrDecryptionFailure, err)
	}

	note, err := parseNotePayload(notePlain, pkRecipient)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}
	return note, trimMemo(memoPlain), nil
}

// trimMemo removes the zero padding appended by EncryptNote. Memo bytes are
// never themselves all-zero-suffixed by convention in this protocol, so a
// trailing run of zero bytes is always padding.
func trimMemo(padded []byte) []byte {
	end := len(padded)
	for end > 0 && padded[end-1] == 0 {
		end--
	}
	out := make([]byte, end)
	copy(out, padded[:end])
	return out
}

func associatedData(version uint8, diversifierIndex uint32) []byte {
	ad := make([]byte, 5)
	ad[0] = version
	putUint32LE(ad[1:5], diversifierIndex)
	return ad
}

// deriveEnvelopeKeys expands the KEM shared secret into the AEAD key and the
// two nonces used for the note and memo sections, via the same canonical
// KDF the coinbase path uses (kdf.go).
func deriveEnvelopeKeys(sharedSecret []byte) (key [32]byte, nonceNote, nonceMemo [chacha20poly1305.NonceSize]byte, err error) {
	if err = kdfExpand("note-envelope-key", 0, sharedSecret, key[:]); err != nil {
		return
	}
	if err = kdfExpand("note-envelope-nonce", 0, sharedSecret, nonceNote[:]); err != nil {
		return
	}
	if err = kdfExpand("note-envelope-nonce", 1, sharedSecret, nonceMemo[:]); err != nil {
		return
	}
	return
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putUint16BE(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func getUint16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
