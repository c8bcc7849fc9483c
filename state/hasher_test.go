package state

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/t00ts/pathfinder/felt"
)

func TestMiMCHasherDeterministicAndOrderSensitive(t *testing.T) {
	h := NewMiMCHasher()
	a, b := felt.FromUint64(1), felt.FromUint64(2)

	require.Equal(t, h.Hash(a, b), h.Hash(a, b))
	require.NotEqual(t, h.Hash(a, b), h.Hash(b, a))
}
