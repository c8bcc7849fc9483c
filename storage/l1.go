package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

// l1StateRow is the gob-encoded payload for one L1StateTable entry;
// the block number itself lives in the key, not the value.
type l1StateRow struct {
	GlobalRoot  felt.Felt
	EthOrigin   common.EthOrigin
}

// L1StateTable stores StateUpdateLog rows observed on L1, ordered by
// block number.
type L1StateTable struct{}

// Insert adds one log row. Callers insert a whole Update batch under
// one Tx; order within the batch is the caller's responsibility.
func (L1StateTable) Insert(w pebble.Writer, log types.StateUpdateLog) error {
	row := l1StateRow{GlobalRoot: log.GlobalRoot, EthOrigin: log.Origin}
	val, err := encodeValue(row)
	if err != nil {
		return err
	}
	return w.Set(l1StateKey(uint64(log.BlockNumber)), val, nil)
}

// Get returns the log at block, if present.
func (L1StateTable) Get(r Reader, block common.BlockNumber) (types.StateUpdateLog, bool, error) {
	val, closer, err := r.Get(l1StateKey(uint64(block)))
	if errors.Is(err, pebble.ErrNotFound) {
		return types.StateUpdateLog{}, false, nil
	}
	if err != nil {
		return types.StateUpdateLog{}, false, err
	}
	defer closer.Close()
	var row l1StateRow
	if err := decodeValue(val, &row); err != nil {
		return types.StateUpdateLog{}, false, err
	}
	return types.StateUpdateLog{BlockNumber: block, GlobalRoot: row.GlobalRoot, Origin: row.EthOrigin}, true, nil
}

// GetRoot is a narrow convenience over Get for the reconciler, which
// only ever needs the root.
func (t L1StateTable) GetRoot(r Reader, block common.BlockNumber) (felt.Felt, bool, error) {
	log, ok, err := t.Get(r, block)
	if err != nil || !ok {
		return felt.Zero, ok, err
	}
	return log.GlobalRoot, true, nil
}

// GetLatest returns the highest-numbered log, if any exist.
func (L1StateTable) GetLatest(r Reader) (types.StateUpdateLog, bool, error) {
	key, val, ok, err := latestInPrefix(r, l1StatePrefix)
	if err != nil || !ok {
		return types.StateUpdateLog{}, false, err
	}
	block := common.BlockNumber(decodeBlockNumber(key[len(l1StatePrefix):]))
	var row l1StateRow
	if err := decodeValue(val, &row); err != nil {
		return types.StateUpdateLog{}, false, err
	}
	return types.StateUpdateLog{BlockNumber: block, GlobalRoot: row.GlobalRoot, Origin: row.EthOrigin}, true, nil
}

// Reorg deletes every log at or above tail, inclusive.
func (L1StateTable) Reorg(w pebble.Writer, tail common.BlockNumber) error {
	return deleteRangeFrom(w, l1StatePrefix, uint64(tail))
}
