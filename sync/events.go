package sync

import (
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

// L1Event is the sealed set of events the L1 producer can send. Each
// concrete type implements isL1Event so the driver's type switch is
// exhaustive by construction — the closest Go idiom to the source's
// enumerated producer->driver message type.
type L1Event interface{ isL1Event() }

// L1Update carries a non-empty, monotonically increasing batch of
// state-update logs observed on L1.
type L1Update struct{ Logs []types.StateUpdateLog }

// L1Reorg announces that every L1 log at or above Tail is invalid.
type L1Reorg struct{ Tail common.BlockNumber }

// L1QueryUpdateReply answers an L1QueryUpdate.
type L1QueryUpdateReply struct {
	Log   types.StateUpdateLog
	Found bool
}

// L1QueryUpdate asks the driver for the stored log at Block.
type L1QueryUpdate struct {
	Block common.BlockNumber
	Reply chan<- L1QueryUpdateReply
}

func (L1Update) isL1Event()      {}
func (L1Reorg) isL1Event()       {}
func (L1QueryUpdate) isL1Event() {}

// L2Event is the sealed set of events the L2 producer (or the
// peer-agnostic P2P client acting as one) can send.
type L2Event interface{ isL2Event() }

// L2Update carries one freshly synced L2 block, its state diff and
// timing breakdown, plus the transaction/receipt pairs it contains.
type L2Update struct {
	Block    types.StarknetBlock
	Diff     types.StateDiff
	Timings  types.Timings
	Txs      []types.Transaction
	Receipts []types.Receipt
}

// L2Reorg announces that every L2 block at or above Tail is invalid.
type L2Reorg struct{ Tail common.BlockNumber }

// L2NewContract carries a content-addressed contract definition to
// insert idempotently.
type L2NewContract struct{ Contract types.ContractDefinition }

// L2QueryHashReply answers an L2QueryHash.
type L2QueryHashReply struct {
	Hash  felt.Felt
	Found bool
}

// L2QueryHash asks the driver for the stored hash at Block.
type L2QueryHash struct {
	Block common.BlockNumber
	Reply chan<- L2QueryHashReply
}

// L2QueryContractExistence asks which of Hashes are already stored;
// the reply is positionally aligned with Hashes.
type L2QueryContractExistence struct {
	Hashes []felt.Felt
	Reply  chan<- []bool
}

func (L2Update) isL2Event()                 {}
func (L2Reorg) isL2Event()                  {}
func (L2NewContract) isL2Event()            {}
func (L2QueryHash) isL2Event()              {}
func (L2QueryContractExistence) isL2Event() {}
