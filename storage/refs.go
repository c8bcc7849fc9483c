package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/t00ts/pathfinder/common"
)

// RefsTable holds small named references, today just the composite
// L1∧L2 head pointer (key "l1_l2_head"). Absent means no
// agreement has been reached yet.
type RefsTable struct{}

// GetL1L2Head returns (head, true) if set, or (0, false) if absent.
func (RefsTable) GetL1L2Head(r Reader) (common.BlockNumber, bool, error) {
	val, closer, err := r.Get(refKey(refL1L2Head))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer closer.Close()
	return common.BlockNumber(decodeBlockNumber(val)), true, nil
}

// SetL1L2Head sets the composite head to head, or clears it if ok is
// false.
func (RefsTable) SetL1L2Head(w pebble.Writer, head common.BlockNumber, ok bool) error {
	key := refKey(refL1L2Head)
	if !ok {
		return w.Delete(key, nil)
	}
	return w.Set(key, encodeBlockNumber(uint64(head)), nil)
}
