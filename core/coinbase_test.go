package core

import "testing"

func TestBuildCoinbaseMatchesSchedule(t *testing.T) {
	addr, _ := newTestShieldedAddress(t)
	seed := [32]byte{0x42}
	cb, err := BuildCoinbase(addr, 0, seed)
	if err != nil {
		t.Fatalf("build coinbase: %v", err)
	}
	if cb.Amount != BlockRewardAt(0) {
		t.Fatalf("amount = %d, want %d", cb.Amount, BlockRewardAt(0))
	}
	if len(cb.Envelope) != EnvelopeSize {
		t.Fatalf("envelope size = %d, want %d", len(cb.Envelope), EnvelopeSize)
	}
}

func TestBuildCoinbaseIsDeterministicInSeed(t *testing.T) {
	addr, _ := newTestShieldedAddress(t)
	seed := [32]byte{0x07}
	a, err := BuildCoinbase(addr, 10, seed)
	if err != nil {
		t.Fatalf("build coinbase a: %v", err)
	}
	b, err := BuildCoinbase(addr, 10, seed)
	if err != nil {
		t.Fatalf("build coinbase b: %v", err)
	}
	if !coinbaseCommitment(a).Equal(coinbaseCommitment(b)) {
		t.Fatalf("same seed/height should yield the same commitment")
	}
}

func TestValidateCoinbaseRejectsWrongAmount(t *testing.T) {
	addr, _ := newTestShieldedAddress(t)
	cb, err := BuildCoinbase(addr, 0, [32]byte{0x01})
	if err != nil {
		t.Fatalf("build coinbase: %v", err)
	}
	cb.Amount = BlockRewardAt(0) + 1
	if err := validateCoinbase(cb, 0); err == nil {
		t.Fatalf("expected validation error for mismatched amount")
	}
}

func TestValidateCoinbaseRejectsNil(t *testing.T) {
	if err := validateCoinbase(nil, 0); err != ErrMissingCoinbase {
		t.Fatalf("expected ErrMissingCoinbase, got %v", err)
	}
}

func TestValidateCoinbaseRejectsBadEnvelopeLength(t *testing.T) {
	addr, _ := newTestShieldedAddress(t)
	cb, err := BuildCoinbase(addr, 0, [32]byte{0x01})
	if err != nil {
		t.Fatalf("build coinbase: %v", err)
	}
	cb.Envelope = cb.Envelope[:len(cb.Envelope)-1]
	if err := validateCoinbase(cb, 0); err != ErrMalformedEnvelope {
		t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
	}
}
