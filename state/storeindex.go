package state

import (
	"github.com/t00ts/pathfinder/felt"
	"github.com/t00ts/pathfinder/storage"
)

// StoreIndex adapts a storage.Tx's ContractsTable/ContractsStateTable
// into the ContractIndex the Updater expects, so the driver can call
// (*Updater).Update directly inside its transaction.
type StoreIndex struct {
	Tx *storage.Tx
}

func (i StoreIndex) ContractRoot(address felt.Felt) (felt.Felt, error) {
	var contracts storage.ContractsTable
	_, root, ok, err := contracts.Get(i.Tx.Reader(), address)
	if err != nil {
		return felt.Zero, err
	}
	if !ok {
		return felt.Zero, nil
	}
	return root, nil
}

func (i StoreIndex) RecordContract(address, classHash, stateHash, contractRoot felt.Felt) error {
	var contracts storage.ContractsTable
	var cstate storage.ContractsStateTable
	if err := contracts.Upsert(i.Tx.Writer(), address, classHash, contractRoot); err != nil {
		return err
	}
	return cstate.Upsert(i.Tx.Writer(), stateHash, classHash, contractRoot)
}
