package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextIncrements(t *testing.T) {
	require.Equal(t, BlockNumber(1), Genesis.Next())
	require.Equal(t, BlockNumber(6), BlockNumber(5).Next())
}

func TestPrevSaturatesAtGenesis(t *testing.T) {
	require.Equal(t, Genesis, Genesis.Prev())
	require.Equal(t, BlockNumber(4), BlockNumber(5).Prev())
}

func TestPrevOrAbsent(t *testing.T) {
	n, ok := Genesis.PrevOrAbsent()
	require.False(t, ok)
	require.Zero(t, n)

	n, ok = BlockNumber(1).PrevOrAbsent()
	require.True(t, ok)
	require.Equal(t, Genesis, n)
}
