package core

// proof_gateway.go is the validity pipeline every shielded transfer bundle
// passes through before it touches ledger state: cheapest checks first,
// the external STARK proof last since it dominates verification cost. The
// STARK system itself is out of scope here — ProofVerifier is the seam a
// concrete prover/verifier plugs into.

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cloudflare/circl/sign/schemes"
)

// bindingScheme is the post-quantum signature algorithm used to bind a
// bundle's public inputs together (anchor, nullifiers, commitments, fee,
// asset id) without ever requiring a transparent sender identity.
var bindingScheme = schemes.ByName("ML-DSA-65")

// anchorChecker is the read-only slice of ledger state the stateless pass
// needs to short-circuit a doomed-to-fail bundle before paying for the
// external proof. It is satisfied by *Ledger; both methods take only its
// read lock, so the stateless pass never holds the write lock, though a call
// waits while another block's application holds it. It is a best-effort
// pre-check only: ledger
// state can still change before the bundle reaches the write-locked,
// authoritative recheck in stageTransfer, which is what actually enforces
// anchor freshness and nullifier novelty.
type anchorChecker interface {
	HasRoot(root F) bool
	IsNullifierSpent(n Nullifier) bool
}

// ProofVerifier abstracts the external zero-knowledge proving system. This
// package only verifies that a bundle carries an accepted proof; it does
// not implement the prover or the constraint system itself.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, bundle *TransferBundle) error
}

// bundlePublicInputs canonicalizes the fields the binding signature and the
// proof both authenticate: everything in the bundle except the signature
// and proof bytes themselves.
func bundlePublicInputs(b *TransferBundle) []byte {
	cp := *b
	cp.BindingSig = nil
	cp.Proof = nil
	return cp.Encode()
}

func verifyEnvelopeShapes(b *TransferBundle) error {
	if len(b.Commitments) != len(b.Envelopes) {
		return ErrMalformedEnvelope
	}
	for _, env := range b.Envelopes {
		if len(env) != EnvelopeSize {
			return ErrMalformedEnvelope
		}
	}
	return nil
}

func verifyNoInBundleNullifierCollisions(b *TransferBundle) error {
	seen := make(map[Nullifier]struct{}, len(b.Nullifiers))
	for _, n := range b.Nullifiers {
		if _, dup := seen[n]; dup {
			return ErrDuplicateNullifier
		}
		seen[n] = struct{}{}
	}
	return nil
}

func verifyBindingSignature(b *TransferBundle) error {
	if len(b.BindingPubKey) == 0 || len(b.BindingSig) == 0 {
		return ErrBadBindingSignature
	}
	pk, err := bindingScheme.UnmarshalBinaryPublicKey(b.BindingPubKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadBindingSignature, err)
	}
	if !bindingScheme.Verify(pk, bundlePublicInputs(b), b.BindingSig, nil) {
		return ErrBadBindingSignature
	}
	return nil
}

// verifyBundleStateless runs every gateway check that does not require
// holding the ledger's write lock: envelope well-formedness, in-bundle
// nullifier collisions, the binding signature, a read-locked anchor/nullifier
// pre-check against checker (if non-nil), and finally the external proof —
// by far the most expensive step, so the cheap checks above it reject a
// doomed bundle before that cost is paid. The ledger still runs the
// authoritative, write-locked anchor and nullifier-novelty recheck itself
// in stageTransfer immediately before applying a bundle that passed this
// pipeline, since state can change between this pre-check and that lock
// being acquired.
func verifyBundleStateless(ctx context.Context, checker anchorChecker, verifier ProofVerifier, b *TransferBundle) error {
	if err := verifyEnvelopeShapes(b); err != nil {
		return err
	}
	if err := verifyNoInBundleNullifierCollisions(b); err != nil {
		return err
	}
	if err := verifyBindingSignature(b); err != nil {
		return err
	}
	if checker != nil {
		anchor, err := FieldFromBytes(b.Anchor)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnchor, err)
		}
		if !checker.HasRoot(anchor) {
			return ErrInvalidAnchor
		}
		for _, n := range b.Nullifiers {
			if checker.IsNullifierSpent(n) {
				return ErrDuplicateNullifier
			}
		}
	}
	if verifier != nil {
		if err := verifier.VerifyProof(ctx, b); err != nil {
			return fmt.Errorf("%w: %v", ErrProofVerificationFailed, err)
		}
	}
	return nil
}

// verifyBundlesStateless runs the stateless pipeline over every bundle in a
// block concurrently. The proof check dominates the cost of each bundle, so
// this is where fanning out actually pays for itself; the authoritative
// state-dependent checks still run serially afterwards, in block order,
// under the ledger's write lock.
func verifyBundlesStateless(ctx context.Context, checker anchorChecker, verifier ProofVerifier, bundles []*TransferBundle) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, bundle := range bundles {
		b := bundle
		g.Go(func() error { return verifyBundleStateless(ctx, checker, verifier, b) })
	}
	return g.Wait()
}
