package ratchet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChainKey(seed byte) ChainKey {
	var ck ChainKey
	for i := range ck.Key {
		ck.Key[i] = seed
	}
	return ck
}

func TestAdvanceIsDeterministic(t *testing.T) {
	ck := testChainKey(0x42)

	next1, mk1, err := ck.Advance()
	require.NoError(t, err)
	next2, mk2, err := ck.Advance()
	require.NoError(t, err)

	assert.Equal(t, next1, next2)
	assert.Equal(t, mk1, mk2)
}

func TestAdvanceNeverReturnsInput(t *testing.T) {
	ck := testChainKey(0x42)
	for i := 0; i < 100; i++ {
		next, mk, err := ck.Advance()
		require.NoError(t, err)
		assert.NotEqual(t, ck.Key, next.Key)
		assert.NotEqual(t, ck.Key, [32]byte(mk))
		assert.Equal(t, ck.Index+1, next.Index)
		ck = next
	}
}

func TestAdvanceYieldsDistinctMessageKeys(t *testing.T) {
	ck := testChainKey(0x07)
	seen := make(map[MessageKey]bool)
	for i := 0; i < 50; i++ {
		next, mk, err := ck.Advance()
		require.NoError(t, err)
		assert.False(t, seen[mk], "message key repeated at index %d", i)
		seen[mk] = true
		ck = next
	}
}

func TestExpandMessageKey(t *testing.T) {
	_, mk, err := testChainKey(0x11).Advance()
	require.NoError(t, err)

	keys, err := mk.Expand(7)
	require.NoError(t, err)

	assert.Equal(t, MsgIndex(7), keys.Counter)
	assert.NotEqual(t, [32]byte{}, keys.CipherKey)
	assert.NotEqual(t, [32]byte{}, keys.MacKey)
	assert.NotEqual(t, [16]byte{}, keys.IV)
	assert.NotEqual(t, keys.CipherKey, keys.MacKey)

	// Same seed, same expansion
	again, err := mk.Expand(7)
	require.NoError(t, err)
	assert.Equal(t, keys, again)
}
