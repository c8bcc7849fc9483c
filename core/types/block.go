// Package types holds the wire- and storage-level data model shared by
// the L1/L2 producers, the storage layer and the sync driver: blocks,
// state-update logs, state diffs and contract definitions.
package types

import (
	"time"

	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/felt"
)

// StarknetBlock is an L2 block as committed to local storage: just
// enough to drive reconciliation and to answer QueryHash. Full
// transaction/receipt bodies live in StarknetTransactionsTable,
// keyed by (BlockNumber, index within the block).
type StarknetBlock struct {
	Number    common.BlockNumber
	Hash      felt.Felt
	Root      felt.Felt
	Timestamp time.Time
}

// StateUpdateLog is a single StarkNet state-update event observed on
// L1, ordered by BlockNumber.
type StateUpdateLog struct {
	BlockNumber common.BlockNumber
	GlobalRoot  felt.Felt
	Origin      common.EthOrigin
}

// DeployedContract is one contract deployment inside a StateDiff.
type DeployedContract struct {
	Address   felt.Felt
	ClassHash felt.Felt
}

// StorageWrite is a single storage-slot update inside a ContractUpdate.
type StorageWrite struct {
	Key   felt.Felt
	Value felt.Felt
}

// ContractUpdate is the set of storage writes applied to one already
// deployed contract inside a StateDiff. Multiple ContractUpdates for
// the same Address within one StateDiff are legal; the last one wins.
type ContractUpdate struct {
	Address        felt.Felt
	ClassHash      felt.Felt
	StorageUpdates []StorageWrite
}

// StateDiff is the set of deploys and storage writes produced by one
// L2 block. It is consumed once by the Global State Updater and never
// stored verbatim.
type StateDiff struct {
	DeployedContracts []DeployedContract
	ContractUpdates   []ContractUpdate
}

// ContractDefinition is a content-addressed, compressed contract
// program. Insertion is idempotent: inserting the same Hash twice is a
// no-op, not an error.
type ContractDefinition struct {
	Hash               felt.Felt
	CompressedBytecode []byte
	ABI                []byte
}

// Timings records how long the pieces of one L2 block application
// took, purely for the debug-level performance log line.
type Timings struct {
	BlockDownload      time.Duration
	StateDiffDownload  time.Duration
	ContractDeployment time.Duration
}

// Transaction and Receipt are opaque payload types as far as the sync
// core is concerned: they are stored and counted, never interpreted.
// The concrete shapes they'd need (calldata, events, execution
// resources) belong to the excluded Cairo call-out serializer and the
// sequencer client, so only the fields sync needs to keep the two
// lists aligned are modeled here.
type Transaction struct {
	Hash felt.Felt
	Raw  []byte
}

type Receipt struct {
	TransactionHash felt.Felt
	Raw             []byte
}
