package storage

import (
	"github.com/cockroachdb/pebble"
	"github.com/t00ts/pathfinder/core/types"
)

type txRow struct {
	Tx      types.Transaction
	Receipt types.Receipt
}

// StarknetTransactionsTable stores transaction/receipt pairs for a
// block, keyed by (block number, index within block) so a whole
// block's transactions can be range-scanned in order.
type StarknetTransactionsTable struct{}

// Put stores the transaction/receipt at (blockNumber, index), one call
// per transaction; the caller batches these under the same Tx as the
// owning StarknetBlocksTable.Insert.
func (StarknetTransactionsTable) Put(w pebble.Writer, blockNumber uint64, index uint32, tx types.Transaction, receipt types.Receipt) error {
	val, err := encodeValue(txRow{Tx: tx, Receipt: receipt})
	if err != nil {
		return err
	}
	return w.Set(txKey(blockNumber, index), val, nil)
}

// GetBlock returns every (transaction, receipt) pair stored for
// blockNumber, in index order.
func (StarknetTransactionsTable) GetBlock(r Reader, blockNumber uint64) ([]types.Transaction, []types.Receipt, error) {
	prefix := txPrefixForBlock(blockNumber)
	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, nil, err
	}
	defer iter.Close()

	var txs []types.Transaction
	var receipts []types.Receipt
	for ok := iter.First(); ok; ok = iter.Next() {
		var row txRow
		if err := decodeValue(iter.Value(), &row); err != nil {
			return nil, nil, err
		}
		txs = append(txs, row.Tx)
		receipts = append(receipts, row.Receipt)
	}
	return txs, receipts, nil
}

// Reorg deletes every transaction belonging to a block at or above
// tail, inclusive.
func (StarknetTransactionsTable) Reorg(w pebble.Writer, tail uint64) error {
	return deleteRangeFrom(w, txPrefix, tail)
}
