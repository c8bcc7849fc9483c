// Package state implements the Global State Updater (component D): it
// replays one block's StateDiff against a Merkle global state tree and
// returns the new root. The tree and hash primitives themselves are
// out of scope here — StarkNet's Pedersen/Poseidon tree is a
// cryptographic primitive this core treats as a pluggable collaborator
// rather than something to re-derive from scratch (see DESIGN.md) —
// so this package is built entirely against the Hasher, GlobalStateTree
// and ContractStorageTrie interfaces, with an in-memory reference
// implementation for tests.
package state

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/t00ts/pathfinder/felt"
)

// Hasher computes the two-to-one compression function the tree uses
// both as its leaf value (H(class_hash, contract_root)) and internally
// for node hashing. StarkNet itself uses Pedersen/Poseidon; this core
// doesn't implement either, so any Hasher satisfying this interface is
// a valid stand-in for tests and for embedding callers that bring
// their own.
type Hasher interface {
	Hash(a, b felt.Felt) felt.Felt
}

// mimcHasher is the default Hasher, backed by gnark-crypto's MiMC
// permutation. It is not StarkNet's actual hash function: it is a
// real, well-reviewed two-to-one compression function used here as a
// documented stand-in until a Pedersen/Poseidon implementation is
// wired in by an embedding caller (see DESIGN.md).
type mimcHasher struct{}

// NewMiMCHasher returns the default Hasher.
func NewMiMCHasher() Hasher { return mimcHasher{} }

func (mimcHasher) Hash(a, b felt.Felt) felt.Felt {
	h := mimc.NewMiMC()
	h.Write(a[:])
	h.Write(b[:])
	sum := h.Sum(nil)
	var out felt.Felt
	// sum is wider than a felt in general; keep the low 32 bytes and
	// mask to 252 bits the same way felt.FromUint256 does.
	copy(out[:], sum[len(sum)-32:])
	out[0] &= 0x0f
	return out
}
