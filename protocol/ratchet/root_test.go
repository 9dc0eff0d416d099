package ratchet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ee-session/crypto/key_ed25519"
)

func TestCreateChainConverges(t *testing.T) {
	alicePair, err := key_ed25519.NewPair()
	require.NoError(t, err)
	bobPair, err := key_ed25519.NewPair()
	require.NoError(t, err)

	var root RootKey
	for i := range root {
		root[i] = byte(i)
	}

	// Both sides run the same step with complementary key material.
	aliceRoot, aliceChain, err := root.CreateChain(bobPair.Pub, alicePair)
	require.NoError(t, err)
	bobRoot, bobChain, err := root.CreateChain(alicePair.Pub, bobPair)
	require.NoError(t, err)

	assert.Equal(t, aliceRoot, bobRoot, "root keys should match after DH ratchet")
	assert.Equal(t, aliceChain, bobChain, "chain keys should match after DH ratchet")
	assert.NotEqual(t, root, aliceRoot)
	assert.Equal(t, MsgIndex(0), aliceChain.Index)
}

func TestDeriveInitialKeys(t *testing.T) {
	secret := bytes.Repeat([]byte{0xAB}, 128)

	root1, chain1, err := DeriveInitialKeys(secret)
	require.NoError(t, err)
	root2, chain2, err := DeriveInitialKeys(secret)
	require.NoError(t, err)

	assert.Equal(t, root1, root2)
	assert.Equal(t, chain1, chain2)
	assert.NotEqual(t, root1[:], chain1.Key[:])
}
