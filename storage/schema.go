package storage

import "encoding/binary"

// Key prefixes, one per logical table this core persists. Mirrors
// core/rawdb's schema.go convention of short ASCII prefixes followed
// by a big-endian-encoded sort key, which keeps range scans (latest
// entry, reorg-tail deletes) a simple prefix-bounded iteration instead
// of a full table scan.
var (
	l1StatePrefix        = []byte("L") // L + blocknum(8) -> StateUpdateLog
	starknetBlockPrefix  = []byte("B") // B + blocknum(8) -> StarknetBlock
	blockHashIndexPrefix = []byte("H") // H + hash(32)    -> blocknum(8)
	txPrefix             = []byte("T") // T + blocknum(8) + txindex(4) -> (Transaction, Receipt)
	contractCodePrefix   = []byte("C") // C + classhash(32) -> ContractDefinition
	contractsStatePrefix = []byte("S") // S + statehash(32) -> (classhash, contractroot)
	contractsPrefix      = []byte("A") // A + address(32)   -> (classhash, contractroot)
	refsPrefix           = []byte("R") // R + name -> value
)

var refL1L2Head = []byte("l1_l2_head")

func encodeBlockNumber(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func decodeBlockNumber(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func blockKey(n uint64) []byte {
	return append(append([]byte{}, starknetBlockPrefix...), encodeBlockNumber(n)...)
}

func l1StateKey(n uint64) []byte {
	return append(append([]byte{}, l1StatePrefix...), encodeBlockNumber(n)...)
}

func hashIndexKey(hash [32]byte) []byte {
	return append(append([]byte{}, blockHashIndexPrefix...), hash[:]...)
}

func txKey(blockNumber uint64, index uint32) []byte {
	k := append(append([]byte{}, txPrefix...), encodeBlockNumber(blockNumber)...)
	idx := make([]byte, 4)
	binary.BigEndian.PutUint32(idx, index)
	return append(k, idx...)
}

func txPrefixForBlock(blockNumber uint64) []byte {
	return append(append([]byte{}, txPrefix...), encodeBlockNumber(blockNumber)...)
}

func contractCodeKey(classHash [32]byte) []byte {
	return append(append([]byte{}, contractCodePrefix...), classHash[:]...)
}

func contractsStateKey(stateHash [32]byte) []byte {
	return append(append([]byte{}, contractsStatePrefix...), stateHash[:]...)
}

func contractsKey(address [32]byte) []byte {
	return append(append([]byte{}, contractsPrefix...), address[:]...)
}

func refKey(name []byte) []byte {
	return append(append([]byte{}, refsPrefix...), name...)
}

// prefixUpperBound returns the smallest key greater than every key
// with the given prefix, for use as an iterator's exclusive upper
// bound (the pebble idiom for "scan this prefix only").
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // prefix was all 0xff, unbounded
}
