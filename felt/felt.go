// Package felt provides the 252-bit StarkNet field element used
// throughout the sync core as a block hash, state root, contract root,
// or class hash. Values are opaque outside of equality comparisons and
// their use as Merkle tree keys — this package does not implement
// field arithmetic, modular reduction against StarkNet's actual prime,
// or the Pedersen/Poseidon hash; those are cryptographic primitives
// kept out of scope for this core (see DESIGN.md).
package felt

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// Felt is a 252-bit field element, stored big-endian in the low 252
// bits of a 32-byte array.
type Felt [32]byte

// Zero is the additive identity, used as the initial contract storage
// root for a freshly deployed contract.
var Zero = Felt{}

// FromUint256 truncates u into a Felt, keeping only the low 252 bits.
func FromUint256(u *uint256.Int) Felt {
	b := u.Bytes32()
	b[0] &= 0x0f // clear the top 4 bits: 252 = 256 - 4
	return Felt(b)
}

// FromUint64 builds a Felt from a small integer, for tests and seeding
// genesis values.
func FromUint64(v uint64) Felt {
	var u uint256.Int
	u.SetUint64(v)
	return FromUint256(&u)
}

// Uint256 widens f to a uint256.Int for arithmetic.
func (f Felt) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes(f[:])
}

// IsZero reports whether f is the zero element.
func (f Felt) IsZero() bool {
	return f == Zero
}

// Bytes returns the big-endian 32-byte encoding of f.
func (f Felt) Bytes() [32]byte {
	return f
}

// String renders f as a 0x-prefixed hex string.
func (f Felt) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

// Format implements fmt.Formatter so Felt prints sensibly in log lines
// and test failure messages.
func (f Felt) Format(s fmt.State, verb rune) {
	switch verb {
	case 'x', 's', 'v':
		fmt.Fprint(s, f.String())
	default:
		fmt.Fprintf(s, "%%!%c(felt.Felt=%s)", verb, f.String())
	}
}
