package core

import "errors"

// Ledger-boundary error taxonomy. Every failure is definitive: a block
// carrying one of these is invalid and is rejected in full, never retried
// by the runtime itself. ErrTreeFull lives in merkle_tree_operations.go
// next to the component it belongs to.
var (
	ErrInvalidAnchor           = errors.New("shielded: anchor not in recent-roots window")
	ErrDuplicateNullifier      = errors.New("shielded: nullifier already spent or repeated in bundle")
	ErrMalformedEnvelope       = errors.New("shielded: ciphertext envelope has wrong length")
	ErrBadBindingSignature     = errors.New("shielded: binding signature does not authenticate bundle")
	ErrProofVerificationFailed = errors.New("shielded: proof verifier rejected bundle")
	ErrPoolUnderflow           = errors.New("shielded: fee would drive pool balance negative")
	ErrMissingCoinbase         = errors.New("shielded: block has no coinbase inherent")
	ErrDuplicateCoinbase       = errors.New("shielded: block carries more than one coinbase inherent")
	ErrTooManyTransfers        = errors.New("shielded: block exceeds MaxTransfersPerBlock")
)

// ErrDecryptionFailure is raised only by wallet-side scanning helpers
// (note.go); it is explicitly non-fatal.
var ErrDecryptionFailure = errors.New("shielded: note does not belong to this viewing key")
