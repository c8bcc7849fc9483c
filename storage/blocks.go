package storage

import (
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/t00ts/pathfinder/common"
	"github.com/t00ts/pathfinder/core/types"
	"github.com/t00ts/pathfinder/felt"
)

type blockRow struct {
	Hash      felt.Felt
	Root      felt.Felt
	Timestamp int64 // unix seconds
}

// StarknetBlocksTable stores one row per committed L2 block, plus a
// hash->number secondary index so QueryHash-style lookups and P2P
// head propagation can go either direction.
type StarknetBlocksTable struct{}

// Insert adds a block. Also updates the hash index.
func (StarknetBlocksTable) Insert(w pebble.Writer, block types.StarknetBlock) error {
	row := blockRow{Hash: block.Hash, Root: block.Root, Timestamp: block.Timestamp.Unix()}
	val, err := encodeValue(row)
	if err != nil {
		return err
	}
	if err := w.Set(blockKey(uint64(block.Number)), val, nil); err != nil {
		return err
	}
	return w.Set(hashIndexKey(block.Hash.Bytes()), encodeBlockNumber(uint64(block.Number)), nil)
}

// Get returns the block at number, if present.
func (StarknetBlocksTable) Get(r Reader, number common.BlockNumber) (types.StarknetBlock, bool, error) {
	val, closer, err := r.Get(blockKey(uint64(number)))
	if errors.Is(err, pebble.ErrNotFound) {
		return types.StarknetBlock{}, false, nil
	}
	if err != nil {
		return types.StarknetBlock{}, false, err
	}
	defer closer.Close()
	var row blockRow
	if err := decodeValue(val, &row); err != nil {
		return types.StarknetBlock{}, false, err
	}
	return types.StarknetBlock{
		Number:    number,
		Hash:      row.Hash,
		Root:      row.Root,
		Timestamp: time.Unix(row.Timestamp, 0).UTC(),
	}, true, nil
}

// GetByHash resolves a block by hash via the secondary index.
func (t StarknetBlocksTable) GetByHash(r Reader, hash felt.Felt) (types.StarknetBlock, bool, error) {
	val, closer, err := r.Get(hashIndexKey(hash.Bytes()))
	if errors.Is(err, pebble.ErrNotFound) {
		return types.StarknetBlock{}, false, nil
	}
	if err != nil {
		return types.StarknetBlock{}, false, err
	}
	number := common.BlockNumber(decodeBlockNumber(val))
	closer.Close()
	block, ok, err := t.Get(r, number)
	if err != nil || !ok || block.Hash != hash {
		return types.StarknetBlock{}, false, err
	}
	return block, true, nil
}

// GetLatest returns the highest-numbered block, if any exist.
func (StarknetBlocksTable) GetLatest(r Reader) (types.StarknetBlock, bool, error) {
	key, val, ok, err := latestInPrefix(r, starknetBlockPrefix)
	if err != nil || !ok {
		return types.StarknetBlock{}, false, err
	}
	number := common.BlockNumber(decodeBlockNumber(key[len(starknetBlockPrefix):]))
	var row blockRow
	if err := decodeValue(val, &row); err != nil {
		return types.StarknetBlock{}, false, err
	}
	return types.StarknetBlock{
		Number:    number,
		Hash:      row.Hash,
		Root:      row.Root,
		Timestamp: time.Unix(row.Timestamp, 0).UTC(),
	}, true, nil
}

// Reorg deletes every block at or above tail, inclusive. The hash
// index entries for those blocks are intentionally left behind: they
// are harmless orphans (GetByHash on an orphaned hash resolves to a
// number whose primary row is gone or now holds a block with another
// hash, and reports not found in both cases) and reclaiming them would
// require a table scan this type doesn't otherwise need.
func (StarknetBlocksTable) Reorg(w pebble.Writer, tail common.BlockNumber) error {
	return deleteRangeFrom(w, starknetBlockPrefix, uint64(tail))
}
