// Package common holds small value types shared across the sync core:
// the block-height type both chains are indexed by, and the Ethereum
// provenance record attached to every L1 state-update log.
package common

import "fmt"

// BlockNumber is a 64-bit chain height. The zero value is Genesis.
type BlockNumber uint64

// Genesis is the distinguished first block of either chain.
const Genesis BlockNumber = 0

// Next returns n+1. There is no overflow guard: 2^64 blocks is not a
// reachable condition for this core's lifetime.
func (n BlockNumber) Next() BlockNumber {
	return n + 1
}

// Prev returns n-1, saturating at Genesis instead of wrapping.
func (n BlockNumber) Prev() BlockNumber {
	if n == Genesis {
		return Genesis
	}
	return n - 1
}

// PrevOrAbsent returns (n-1, true), or (0, false) if n is Genesis —
// the "retract to tail-1, or absent at genesis" rule used throughout
// the reorg and reconciler logic.
func (n BlockNumber) PrevOrAbsent() (BlockNumber, bool) {
	if n == Genesis {
		return 0, false
	}
	return n - 1, true
}

func (n BlockNumber) String() string {
	return fmt.Sprintf("%d", uint64(n))
}

// EthBlockHash is an opaque 32-byte Ethereum L1 block hash.
type EthBlockHash [32]byte

// EthTxHash is an opaque 32-byte Ethereum L1 transaction hash.
type EthTxHash [32]byte

// EthOrigin records exactly where on L1 a StateUpdateLog was observed:
// the containing block, the emitting transaction, and the log's index
// within it. Purely provenance — never interpreted by the sync core.
type EthOrigin struct {
	BlockHash   EthBlockHash
	BlockNumber uint64
	TxHash      EthTxHash
	TxIndex     uint64
	LogIndex    uint64
}
