package state

import (
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

// ContractIndex is the subset of the store the updater needs to
// resolve existing contracts' current storage roots and record new
// state-hash/contracts-table rows. StoreIndex adapts a storage.Tx to
// it; tests use an in-memory stand-in.
type ContractIndex interface {
	// ContractRoot returns a deployed contract's current storage root,
	// or ZERO if it has never been written to.
	ContractRoot(address felt.Felt) (felt.Felt, error)
	// RecordContract upserts (address -> classHash, contractRoot) and
	// (stateHash -> classHash, contractRoot).
	RecordContract(address, classHash, stateHash, contractRoot felt.Felt) error
}

// Updater is the Global State Updater. It is constructed once and
// reused across blocks; it carries no per-block state of its own.
type Updater struct {
	hasher   Hasher
	trees    TreeFactory
	lastRoot func() (felt.Felt, error)
}

// NewUpdater builds an Updater. lastRoot returns the most recently
// committed global root, or ZERO if the chain is empty.
func NewUpdater(hasher Hasher, trees TreeFactory, lastRoot func() (felt.Felt, error)) *Updater {
	return &Updater{hasher: hasher, trees: trees, lastRoot: lastRoot}
}

// pendingWrite is one address's contribution to the current diff,
// tracked so a ContractUpdate targeting an address deployed earlier in
// the same diff sees that deploy's root instead of the stored one.
type pendingWrite struct {
	address, classHash, stateHash, contractRoot felt.Felt
}

// Update replays diff against the global tree opened at the latest
// stored root and returns the new root. Any error aborts the caller's
// transaction; there is no partial-apply state to clean up since
// nothing is written to idx until every tree mutation has succeeded.
func (u *Updater) Update(idx ContractIndex, diff types.StateDiff) (felt.Felt, error) {
	root, err := u.lastRoot()
	if err != nil {
		return felt.Zero, err
	}
	tree := u.trees.OpenGlobalTree(root)

	var writes []pendingWrite

	// Deploys first: a freshly deployed contract starts with an empty
	// storage trie, so its state hash is H(class_hash, ZERO).
	for _, d := range diff.DeployedContracts {
		stateHash := u.hasher.Hash(d.ClassHash, felt.Zero)
		tree.Set(d.Address, stateHash)
		writes = append(writes, pendingWrite{d.Address, d.ClassHash, stateHash, felt.Zero})
	}

	// Updates: last write per address wins, caller's iteration order
	// otherwise preserved. Each update starts from the deploy in this
	// diff or the stored root, never from an earlier update in the diff.
	deploys := writes[:len(diff.DeployedContracts)]
	for _, upd := range diff.ContractUpdates {
		contractRoot, err := u.applyContractUpdate(idx, deploys, upd)
		if err != nil {
			return felt.Zero, err
		}
		stateHash := u.hasher.Hash(upd.ClassHash, contractRoot)
		tree.Set(upd.Address, stateHash)
		writes = append(writes, pendingWrite{upd.Address, upd.ClassHash, stateHash, contractRoot})
	}

	newRoot, err := tree.Apply()
	if err != nil {
		return felt.Zero, err
	}

	// Only the last write per address is authoritative; earlier ones
	// for the same address are superseded and dropped here.
	last := map[felt.Felt]pendingWrite{}
	for _, w := range writes {
		last[w.address] = w
	}
	for _, w := range last {
		if err := idx.RecordContract(w.address, w.classHash, w.stateHash, w.contractRoot); err != nil {
			return felt.Zero, err
		}
	}

	return newRoot, nil
}

// applyContractUpdate materializes upd.Address's storage subtree —
// starting from a just-deployed ZERO root if this diff deployed it,
// otherwise from the stored root — applies its writes, and returns the
// new contract root.
func (u *Updater) applyContractUpdate(idx ContractIndex, writesSoFar []pendingWrite, upd types.ContractUpdate) (felt.Felt, error) {
	root := felt.Zero
	deployedThisDiff := false
	for _, w := range writesSoFar {
		if w.address == upd.Address {
			root = w.contractRoot
			deployedThisDiff = true
		}
	}
	if !deployedThisDiff {
		stored, err := idx.ContractRoot(upd.Address)
		if err != nil {
			return felt.Zero, err
		}
		root = stored
	}

	trie := u.trees.OpenContractStorageTrie(root)
	for _, w := range upd.StorageUpdates {
		trie.Set(w.Key, w.Value)
	}
	return trie.Apply()
}
