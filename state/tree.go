package state

import (
	"bytes"
	"sort"

	"github.com/t00ts/pathfinder/felt"
)

// GlobalStateTree is the per-contract-address Merkle tree the updater
// writes state hashes into. Opening, node storage and proof generation
// belong to the excluded tree implementation; this interface is the
// narrow surface the updater actually drives.
type GlobalStateTree interface {
	// Set assigns address's leaf value.
	Set(address, stateHash felt.Felt)
	// Apply flushes pending writes and returns the tree's new root.
	Apply() (felt.Felt, error)
}

// ContractStorageTrie is one contract's storage subtree, materialized
// at its current root before applying a batch of writes.
type ContractStorageTrie interface {
	// Set assigns one storage slot.
	Set(key, value felt.Felt)
	// Apply flushes pending writes and returns the subtree's new root.
	Apply() (felt.Felt, error)
}

// TreeFactory opens the collaborator trees the updater needs. An
// embedding caller supplies a real implementation backed by the actual
// Merkle engine; NewMemoryTreeFactory below is the in-memory stand-in used
// by this package's own tests.
type TreeFactory interface {
	// OpenGlobalTree opens the global tree at the given root (ZERO for
	// an empty tree).
	OpenGlobalTree(root felt.Felt) GlobalStateTree
	// OpenContractStorageTrie opens one contract's storage subtree at
	// the given root.
	OpenContractStorageTrie(root felt.Felt) ContractStorageTrie
}

// memTree is a flat, un-pruned, non-Merkleized in-memory stand-in: its
// "root" is just a Hasher-folded digest of its sorted entries. It
// exists only to give this package's own tests and any caller without
// a real tree engine something to run against; it is not the excluded
// Merkle tree and makes no proof-generation or storage-efficiency
// claims.
type memTree struct {
	hasher  Hasher
	seed    felt.Felt // prior root, folded in first; an opaque value we can't expand back into entries
	entries map[felt.Felt]felt.Felt
}

func newMemTree(hasher Hasher, root felt.Felt) *memTree {
	return &memTree{hasher: hasher, seed: root, entries: map[felt.Felt]felt.Felt{}}
}

func (t *memTree) Set(key, value felt.Felt) {
	t.entries[key] = value
}

func (t *memTree) Apply() (felt.Felt, error) {
	keys := make([]felt.Felt, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sortFelts(keys)

	root := t.seed
	for _, k := range keys {
		root = t.hasher.Hash(root, t.hasher.Hash(k, t.entries[k]))
	}
	return root, nil
}

// memTreeFactory backs this package's tests.
type memTreeFactory struct {
	hasher Hasher
}

// NewMemoryTreeFactory returns a TreeFactory backed by the non-Merkle
// in-memory stand-in, for tests and embedding callers without a real
// tree engine available yet.
func NewMemoryTreeFactory(hasher Hasher) TreeFactory {
	return memTreeFactory{hasher: hasher}
}

func (f memTreeFactory) OpenGlobalTree(root felt.Felt) GlobalStateTree {
	return newMemTree(f.hasher, root)
}

func (f memTreeFactory) OpenContractStorageTrie(root felt.Felt) ContractStorageTrie {
	return newMemTree(f.hasher, root)
}

// sortFelts sorts in place by big-endian byte order, giving memTree's
// Apply a deterministic iteration order regardless of map iteration.
func sortFelts(fs []felt.Felt) {
	sort.Slice(fs, func(i, j int) bool {
		return bytes.Compare(fs[i][:], fs[j][:]) < 0
	})
}
