package core

import "testing"

func TestFieldArithmeticWrapsModulo(t *testing.T) {
	max := FieldFromUint64(FieldPrime.Uint64() - 1)
	one := FieldFromUint64(1)
	if got := max.Add(one); !got.IsZero() {
		t.Fatalf("expected wraparound to zero, got %d", got.Uint64())
	}
}

func TestFieldSubUnderflowWraps(t *testing.T) {
	zero := FieldFromUint64(0)
	one := FieldFromUint64(1)
	got := zero.Sub(one)
	if got.Uint64() != FieldPrime.Uint64()-1 {
		t.Fatalf("expected p-1, got %d", got.Uint64())
	}
}

func TestFieldBytesRoundTrip(t *testing.T) {
	f := FieldFromUint64(123456789)
	b := f.Bytes()
	back, err := FieldFromBytes(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Equal(f) {
		t.Fatalf("round trip mismatch: got %d want %d", back.Uint64(), f.Uint64())
	}
}

func TestFieldFromBytesRejectsNonCanonicalPrefix(t *testing.T) {
	var b [32]byte
	b[0] = 0x01
	if _, err := FieldFromBytes(b); err == nil {
		t.Fatalf("expected error for non-zero prefix byte")
	}
}

func TestFieldFromBytesRejectsOutOfRangeValue(t *testing.T) {
	var b [32]byte
	// FieldPrime itself, encoded big-endian in the trailing 8 bytes, is out
	// of the canonical [0, p) range.
	v := FieldPrime.Uint64()
	for i := 0; i < 8; i++ {
		b[31-i] = byte(v >> (8 * i))
	}
	if _, err := FieldFromBytes(b); err == nil {
		t.Fatalf("expected error for value equal to FieldPrime")
	}
}

func TestFieldMulIdentity(t *testing.T) {
	f := FieldFromUint64(42)
	one := FieldFromUint64(1)
	if got := f.Mul(one); !got.Equal(f) {
		t.Fatalf("multiplying by one changed value: got %d want %d", got.Uint64(), f.Uint64())
	}
}
