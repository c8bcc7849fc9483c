package sync

import (
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
	"github.com/t00ts/pathfinder/storage"
)

// reconcileL1Forward advances the composite head after an L1 Update
// that inserted insertedLogs, in order. Only runs forward from the
// current head+1; any gap or disagreement stops the walk without
// error. tx must be the same transaction the logs were inserted under,
// so the reconciler sees its own writes.
func reconcileL1Forward(tx *storage.Tx, insertedLogs []types.StateUpdateLog) error {
	if len(insertedLogs) == 0 {
		return nil
	}
	var refs storage.RefsTable
	var blocks storage.StarknetBlocksTable

	head, hasHead, err := refs.GetL1L2Head(tx.Reader())
	if err != nil {
		return err
	}
	expected := common.Genesis
	if hasHead {
		expected = head.Next()
	}
	if insertedLogs[0].BlockNumber != expected {
		return nil
	}

	nextHead := head
	advanced := false
	for _, log := range insertedLogs {
		block, ok, err := blocks.Get(tx.Reader(), log.BlockNumber)
		if err != nil {
			return err
		}
		if !ok || block.Root != log.GlobalRoot {
			break
		}
		nextHead = log.BlockNumber
		advanced = true
	}
	if !advanced {
		return nil
	}
	return refs.SetL1L2Head(tx.Writer(), nextHead, true)
}

// reconcileL2Forward advances the composite head by exactly one after
// an L2 Update, if the new block continues the head and its root
// matches the L1 log already stored at that height.
func reconcileL2Forward(tx *storage.Tx, blockNumber common.BlockNumber, blockRoot felt.Felt) error {
	var refs storage.RefsTable
	var l1 storage.L1StateTable

	head, hasHead, err := refs.GetL1L2Head(tx.Reader())
	if err != nil {
		return err
	}
	expected := common.Genesis
	if hasHead {
		expected = head.Next()
	}
	if blockNumber != expected {
		return nil
	}

	log, ok, err := l1.Get(tx.Reader(), blockNumber)
	if err != nil {
		return err
	}
	if !ok || log.GlobalRoot != blockRoot {
		return nil
	}
	return refs.SetL1L2Head(tx.Writer(), blockNumber, true)
}

// retractOnReorg implements the Retraction rule: if the current
// composite head is at or above tail, it regresses to tail-1 (or
// absent at genesis).
func retractOnReorg(tx *storage.Tx, tail common.BlockNumber) error {
	var refs storage.RefsTable
	head, hasHead, err := refs.GetL1L2Head(tx.Reader())
	if err != nil || !hasHead || head < tail {
		return err
	}
	newHead, ok := tail.PrevOrAbsent()
	return refs.SetL1L2Head(tx.Writer(), newHead, ok)
}
