package core

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// FieldPrime is the order of the scalar field used by the commitment,
// nullifier and Merkle-node sponge: p = 2^64 - 2^32 + 1 (the "Goldilocks"
// prime). Every higher-level hash in this package reduces to arithmetic over
// this field, and the reduction must match bit-for-bit across the proving
// circuit, the ledger runtime and the scanning wallet.
var FieldPrime = new(big.Int).SetUint64(0xFFFFFFFF00000001)

// F is an element of the field Z/pZ, always held in canonical form
// (0 <= value < FieldPrime). The zero value is the additive identity.
type F struct {
	v uint64
}

// FieldFromUint64 reduces x modulo FieldPrime.
func FieldFromUint64(x uint64) F {
	if x < FieldPrime.Uint64() {
		return F{v: x}
	}
	var b big.Int
	b.SetUint64(x)
	b.Mod(&b, FieldPrime)
	return F{v: b.Uint64()}
}

// Uint64 returns the canonical uint64 representation of f.
func (f F) Uint64() uint64 { return f.v }

func (f F) big() *big.Int { return new(big.Int).SetUint64(f.v) }

// Add returns f + g mod p.
func (f F) Add(g F) F {
	var r big.Int
	r.Add(f.big(), g.big())
	r.Mod(&r, FieldPrime)
	return F{v: r.Uint64()}
}

// Sub returns f - g mod p.
func (f F) Sub(g F) F {
	var r big.Int
	r.Sub(f.big(), g.big())
	r.Mod(&r, FieldPrime)
	return F{v: r.Uint64()}
}

// Mul returns f * g mod p.
func (f F) Mul(g F) F {
	var r big.Int
	r.Mul(f.big(), g.big())
	r.Mod(&r, FieldPrime)
	return F{v: r.Uint64()}
}

// Equal reports whether f and g represent the same field element.
func (f F) Equal(g F) bool { return f.v == g.v }

// IsZero reports whether f is the additive identity.
func (f F) IsZero() bool { return f.v == 0 }

// Bytes encodes f into its canonical 32-byte on-chain form: 24 zero bytes
// followed by the 8-byte big-endian value. This layout is a wire-protocol
// contract observed by every caller.
func (f F) Bytes() [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], f.v)
	return out
}

// FieldFromBytes decodes the canonical 32-byte form produced by Bytes. It
// rejects any non-zero byte in the 24-byte prefix or a tail value outside the
// field, since such an encoding could never have been produced by Bytes.
func FieldFromBytes(b [32]byte) (F, error) {
	for _, z := range b[:24] {
		if z != 0 {
			return F{}, fmt.Errorf("field: non-canonical encoding, nonzero prefix byte")
		}
	}
	v := binary.BigEndian.Uint64(b[24:])
	if v >= FieldPrime.Uint64() {
		return F{}, fmt.Errorf("field: value %d out of range", v)
	}
	return F{v: v}, nil
}

// chunk32ToFieldElements splits a 32-byte value into four field elements,
// each holding 8 little-endian bytes of the input. This chunking rule is
// normative: every caller deriving a commitment or nullifier from a
// 32-byte field MUST split it this same way.
func chunk32ToFieldElements(b [32]byte) [4]F {
	var out [4]F
	for i := 0; i < 4; i++ {
		out[i] = FieldFromUint64(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}
	return out
}
