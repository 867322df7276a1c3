package core

import "fmt"

// coinbase.go builds and validates the mandatory per-block coinbase
// inherent. There is no transparent mint/transfer/burn surface here: the
// only way new value enters the pool is this single deterministic note,
// derived entirely from a per-block seed so that every validator
// recomputes the identical commitment without ever seeing the recipient's
// private note material.

// NativeAssetID is the asset id of the chain's own coinbase-minted asset.
const NativeAssetID uint64 = 0

// BuildCoinbase constructs the coinbase inherent for a block at the given
// height, minting the schedule-determined subsidy to recipient. seed is
// block-producer-supplied entropy (e.g. derived from the block's own
// header once known) that deterministically fixes rho and r; reusing a
// seed for two different heights would let two coinbase notes collide, so
// callers must derive it from data that is unique per height.
func BuildCoinbase(recipient ShieldedAddress, height uint64, seed [32]byte) (*CoinbaseInherent, error) {
	amount := BlockRewardAt(height)
	rho := deriveCoinbaseSecret("coinbase-rho", seed)
	r := deriveCoinbaseSecret("coinbase-r", seed)

	note := &NotePlaintext{
		Value:       amount,
		AssetID:     NativeAssetID,
		PKRecipient: recipient.PKRecipient,
		Rho:         rho,
		R:           r,
	}
	envelope, err := EncryptNote(note, recipient)
	if err != nil {
		return nil, fmt.Errorf("coinbase: encrypt note: %w", err)
	}

	return &CoinbaseInherent{
		RecipientAddress: recipient,
		Amount:           amount,
		Seed:             seed,
		Envelope:         envelope,
	}, nil
}

// coinbaseCommitment recomputes a coinbase inherent's note commitment from
// its public fields alone: a validator never sees the recipient's private
// note, only the deterministic derivation from Seed.
func coinbaseCommitment(inherent *CoinbaseInherent) F {
	rho := deriveCoinbaseSecret("coinbase-rho", inherent.Seed)
	r := deriveCoinbaseSecret("coinbase-r", inherent.Seed)
	return noteCommitment(inherent.Amount, NativeAssetID, inherent.RecipientAddress.PKRecipient, rho, r)
}

// validateCoinbase checks the inherent's shape and subsidy amount against
// the schedule for height. It does not touch ledger state.
func validateCoinbase(inherent *CoinbaseInherent, height uint64) error {
	if inherent == nil {
		return ErrMissingCoinbase
	}
	if len(inherent.Envelope) != EnvelopeSize {
		return ErrMalformedEnvelope
	}
	want := BlockRewardAt(height)
	if inherent.Amount != want {
		return fmt.Errorf("coinbase: amount %d does not match schedule %d at height %d", inherent.Amount, want, height)
	}
	return nil
}
