package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

// ContractCodeTable stores content-addressed contract definitions,
// keyed by class hash. Insertion is idempotent: a NewContract event
// for a class hash already on disk is a no-op, not an error.
type ContractCodeTable struct{}

// Insert stores def if its hash isn't already present. Returns whether
// a write actually happened, purely for logging/metrics purposes.
func (ContractCodeTable) Insert(rw pebble.ReadWriter, def types.ContractDefinition) (inserted bool, err error) {
	key := contractCodeKey(def.Hash.Bytes())
	_, closer, err := rw.Get(key)
	if err == nil {
		closer.Close()
		return false, nil
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return false, err
	}
	val, err := encodeValue(def)
	if err != nil {
		return false, err
	}
	if err := rw.Set(key, val, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports, for each hash in hashes, whether it is already
// stored — the batch primitive QueryContractExistence is built on.
func (ContractCodeTable) Exists(r Reader, hashes []felt.Felt) ([]bool, error) {
	out := make([]bool, len(hashes))
	for i, h := range hashes {
		_, closer, err := r.Get(contractCodeKey(h.Bytes()))
		if err == nil {
			closer.Close()
			out[i] = true
			continue
		}
		if !errors.Is(err, pebble.ErrNotFound) {
			return nil, err
		}
	}
	return out, nil
}

// Get returns the contract definition for hash, if present.
func (ContractCodeTable) Get(r Reader, hash felt.Felt) (types.ContractDefinition, bool, error) {
	val, closer, err := r.Get(contractCodeKey(hash.Bytes()))
	if errors.Is(err, pebble.ErrNotFound) {
		return types.ContractDefinition{}, false, nil
	}
	if err != nil {
		return types.ContractDefinition{}, false, err
	}
	defer closer.Close()
	var def types.ContractDefinition
	if err := decodeValue(val, &def); err != nil {
		return types.ContractDefinition{}, false, err
	}
	return def, true, nil
}

// contractsStateRow is the value for ContractsStateTable: the pair a
// state hash was computed from.
type contractsStateRow struct {
	ClassHash     felt.Felt
	ContractRoot  felt.Felt
}

// ContractsStateTable maps a contract's state hash (H(class_hash,
// contract_root), the leaf value the Global State Updater writes into
// the state tree) back to the pair it was derived from, so later
// lookups don't need to recompute or re-derive.
type ContractsStateTable struct{}

// Upsert stores (classHash, contractRoot) under stateHash.
func (ContractsStateTable) Upsert(w pebble.Writer, stateHash, classHash, contractRoot felt.Felt) error {
	val, err := encodeValue(contractsStateRow{ClassHash: classHash, ContractRoot: contractRoot})
	if err != nil {
		return err
	}
	return w.Set(contractsStateKey(stateHash.Bytes()), val, nil)
}

// Get returns the (classHash, contractRoot) pair for stateHash.
func (ContractsStateTable) Get(r Reader, stateHash felt.Felt) (classHash, contractRoot felt.Felt, ok bool, err error) {
	val, closer, err := r.Get(contractsStateKey(stateHash.Bytes()))
	if errors.Is(err, pebble.ErrNotFound) {
		return felt.Zero, felt.Zero, false, nil
	}
	if err != nil {
		return felt.Zero, felt.Zero, false, err
	}
	defer closer.Close()
	var row contractsStateRow
	if err := decodeValue(val, &row); err != nil {
		return felt.Zero, felt.Zero, false, err
	}
	return row.ClassHash, row.ContractRoot, true, nil
}

// contractRow is the value for ContractsTable: the class an address is
// governed by, and that contract's current storage root — the latter
// is what lets the Global State Updater resume an existing contract's
// storage subtree across blocks without re-deriving it from the
// global tree's opaque leaf value.
type contractRow struct {
	ClassHash    felt.Felt
	ContractRoot felt.Felt
}

// ContractsTable maps a deployed contract's address to its class hash
// and current storage root, so the Global State Updater can resolve
// "which class governs address X, and what's its storage root right
// now" without re-reading the deploy event or the tree itself.
type ContractsTable struct{}

// Upsert sets address's class hash and storage root.
func (ContractsTable) Upsert(w pebble.Writer, address, classHash, contractRoot felt.Felt) error {
	val, err := encodeValue(contractRow{ClassHash: classHash, ContractRoot: contractRoot})
	if err != nil {
		return err
	}
	return w.Set(contractsKey(address.Bytes()), val, nil)
}

// Get returns the class hash and storage root for address, if deployed.
func (ContractsTable) Get(r Reader, address felt.Felt) (classHash, contractRoot felt.Felt, ok bool, err error) {
	val, closer, err := r.Get(contractsKey(address.Bytes()))
	if errors.Is(err, pebble.ErrNotFound) {
		return felt.Zero, felt.Zero, false, nil
	}
	if err != nil {
		return felt.Zero, felt.Zero, false, err
	}
	defer closer.Close()
	var row contractRow
	if err := decodeValue(val, &row); err != nil {
		return felt.Zero, felt.Zero, false, err
	}
	return row.ClassHash, row.ContractRoot, true, nil
}
