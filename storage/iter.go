package storage

import "github.com/cockroachdb/pebble"

// latestInPrefix returns the value stored at the highest key within
// prefix, or ok=false if the prefix is empty. Block numbers are
// encoded big-endian so "highest key" is exactly "highest block
// number" — the same trick core/rawdb uses for its "head" accessors.
func latestInPrefix(r Reader, prefix []byte) (key, value []byte, ok bool, err error) {
	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	if !iter.Last() {
		return nil, nil, false, nil
	}
	key = append([]byte{}, iter.Key()...)
	value = append([]byte{}, iter.Value()...)
	return key, value, true, nil
}

// deleteRangeFrom deletes every key in [prefix+from, prefix+upperbound),
// i.e. every entry at or above a given block number — the primitive
// both L1 and L2 reorg handling are built on.
func deleteRangeFrom(w pebble.Writer, prefix []byte, from uint64) error {
	start := append(append([]byte{}, prefix...), encodeBlockNumber(from)...)
	end := prefixUpperBound(prefix)
	return w.DeleteRange(start, end, nil)
}
