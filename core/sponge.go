package core

// sponge.go implements the fixed-parameter algebraic permutation and the
// absorb-then-squeeze sponge wrapper that back every commitment, nullifier
// and Merkle-node hash in this package. The permutation parameters below —
// width, round count, round constants and the linear diffusion layer — are
// protocol constants: changing any of them is a hard fork, exactly as the
// prover's circuit and the wallet's scanner must agree on the same values.

import (
	"crypto/sha256"
	"encoding/binary"
)

const (
	spongeWidth      = 3 // one element of capacity, two of rate
	spongeRate       = 2
	spongeFullRounds = 8
)

// Domain tags separate logically distinct hash uses so they can never be
// confused with one another.
var (
	domainCommitment = FieldFromUint64(1)
	domainNullifier  = FieldFromUint64(2)
	domainMerkle     = FieldFromUint64(3)
)

// roundConstants holds spongeFullRounds*spongeWidth field elements, derived
// once at package init time from a fixed label via SHA-256 expansion. This is
// a deterministic constant-generation recipe, not a source of runtime
// randomness: every build of this package produces the identical table.
var roundConstants [spongeFullRounds][spongeWidth]F

func init() {
	counter := uint32(0)
	for round := 0; round < spongeFullRounds; round++ {
		for col := 0; col < spongeWidth; col++ {
			roundConstants[round][col] = deriveConstant("synthron-ledger/sponge-rc", counter)
			counter++
		}
	}
}

// deriveConstant expands (label, counter) through SHA-256 and reduces the
// first 8 bytes of the digest modulo FieldPrime. It is used only to build the
// fixed round-constant table above; it is never called with caller-supplied
// data.
func deriveConstant(label string, counter uint32) F {
	h := sha256.New()
	h.Write([]byte(label))
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], counter)
	h.Write(ctr[:])
	digest := h.Sum(nil)
	return FieldFromUint64(binary.BigEndian.Uint64(digest[:8]))
}

// sbox raises x to the 7th power, the round S-box. 7 is coprime with
// FieldPrime-1, so x -> x^7 is a permutation of the field.
func sbox(x F) F {
	x2 := x.Mul(x)
	x4 := x2.Mul(x2)
	x6 := x4.Mul(x2)
	return x6.Mul(x)
}

// mix applies the fixed linear diffusion layer, a small circulant matrix
// chosen so every output element depends on every input element.
func mix(state [spongeWidth]F) [spongeWidth]F {
	two := FieldFromUint64(2)
	var out [spongeWidth]F
	for i := 0; i < spongeWidth; i++ {
		sum := state[i].Mul(two)
		for j := 0; j < spongeWidth; j++ {
			if j != i {
				sum = sum.Add(state[j])
			}
		}
		out[i] = sum
	}
	return out
}

// permute runs the full permutation over a copy of the sponge state and
// returns the result.
func permute(state [spongeWidth]F) [spongeWidth]F {
	for round := 0; round < spongeFullRounds; round++ {
		for i := 0; i < spongeWidth; i++ {
			state[i] = sbox(state[i].Add(roundConstants[round][i]))
		}
		state = mix(state)
	}
	return state
}

// hash implements the absorb-then-squeeze sponge: the domain tag is the
// leading element of the initial state (lane 0), inputs are added into the
// two rate lanes (lanes 0 and 1, so the first input is added onto the tag)
// spongeRate elements at a time with a permutation call after each block,
// lane 2 is the capacity lane and is never absorbed into, and lane 0 of the
// final state is squeezed out as the result. It is a pure, total function:
// this component has no failure mode.
func hash(domainTag F, input []F) F {
	state := [spongeWidth]F{domainTag, F{}, F{}}
	i := 0
	for i < len(input) {
		for lane := 0; lane < spongeRate && i < len(input); lane, i = lane+1, i+1 {
			state[lane] = state[lane].Add(input[i])
		}
		state = permute(state)
	}
	return state[0]
}

// merkleNode computes the parent of two sibling tree nodes.
func merkleNode(left, right F) F {
	return hash(domainMerkle, []F{left, right})
}

// noteCommitment derives the commitment C for a note. The chunking rule for
// the three 32-byte fields is normative: each is split into four field
// elements of 8 little-endian bytes.
func noteCommitment(value, assetID uint64, pkRecipient, rho, r [32]byte) F {
	input := make([]F, 0, 14)
	input = append(input, FieldFromUint64(value), FieldFromUint64(assetID))
	for _, chunked := range [][4]F{chunk32ToFieldElements(pkRecipient), chunk32ToFieldElements(rho), chunk32ToFieldElements(r)} {
		input = append(input, chunked[:]...)
	}
	return hash(domainCommitment, input)
}

// nullifierHash derives the spend-time observable N for a consumed note. The
// nullifier key is chunked the same way as a 32-byte note field; position is
// absorbed as a single field element.
func nullifierHash(nullifierKey [32]byte, position uint64, rho [32]byte) [32]byte {
	input := make([]F, 0, 9)
	keyChunks := chunk32ToFieldElements(nullifierKey)
	input = append(input, keyChunks[:]...)
	input = append(input, FieldFromUint64(position))
	rhoChunks := chunk32ToFieldElements(rho)
	input = append(input, rhoChunks[:]...)
	return hash(domainNullifier, input).Bytes()
}
