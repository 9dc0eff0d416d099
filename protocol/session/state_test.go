package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ee-session/configs"
	"e2ee-session/crypto/key_ed25519"
	"e2ee-session/protocol/ratchet"
)

func TestHasSenderChain(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("empty state", func(t *testing.T) {
		state := NewSessionState()
		assert.False(t, state.HasSenderChain(now))
	})

	t.Run("nil state", func(t *testing.T) {
		var state *SessionState
		assert.False(t, state.HasSenderChain(now))
	})

	t.Run("fresh session", func(t *testing.T) {
		keys := newHandshakeKeys(t)
		state, err := InitializeAliceSession(keys.aliceParams(), now)
		require.NoError(t, err)

		assert.True(t, state.HasSenderChain(now))
		assert.True(t, state.HasSenderChain(now.Add(configs.SessionTTL)))
	})

	t.Run("expired session still holds chain data", func(t *testing.T) {
		keys := newHandshakeKeys(t)
		state, err := InitializeAliceSession(keys.aliceParams(), now)
		require.NoError(t, err)

		expired := now.Add(configs.SessionTTL + time.Second)
		assert.False(t, state.HasSenderChain(expired))
		assert.NotNil(t, state.SenderChain, "expiry is a policy signal, not data loss")
	})
}

func TestReceiverChainBound(t *testing.T) {
	state := NewSessionState()

	var added []key_ed25519.PublicKey
	for i := 0; i < configs.MaxReceiverChains+3; i++ {
		pair := newPair(t)
		added = append(added, pair.Pub)
		state.AddReceiverChain(&ReceiverChain{
			RatchetKey: pair.Pub,
			ChainKey:   ratchet.ChainKey{Key: [32]byte{byte(i + 1)}},
		})
	}

	assert.Len(t, state.ReceiverChains, configs.MaxReceiverChains)
	// Oldest chains were evicted
	for _, key := range added[:3] {
		assert.Nil(t, state.ReceiverChain(key))
	}
	for _, key := range added[3:] {
		assert.NotNil(t, state.ReceiverChain(key))
	}
}

func TestReceiverChainMessageKeys(t *testing.T) {
	rc := &ReceiverChain{ChainKey: ratchet.ChainKey{Key: [32]byte{0x42}}}

	mk0, err := rc.messageKey(0)
	require.NoError(t, err)
	assert.Equal(t, ratchet.MsgIndex(1), rc.ChainKey.Index)

	// Consumed counters are gone
	_, err = rc.messageKey(0)
	assert.ErrorIs(t, err, ErrDuplicateMessage)

	// Jumping ahead caches the keys in between
	mk5, err := rc.messageKey(5)
	require.NoError(t, err)
	assert.Len(t, rc.SkippedKeys, 4)
	assert.NotEqual(t, mk0, mk5)

	// Late arrivals drain the cache exactly once
	mk2, err := rc.messageKey(2)
	require.NoError(t, err)
	assert.NotEqual(t, mk0, mk2)
	_, err = rc.messageKey(2)
	assert.ErrorIs(t, err, ErrDuplicateMessage)
}

func TestReceiverChainSkipBound(t *testing.T) {
	rc := &ReceiverChain{ChainKey: ratchet.ChainKey{Key: [32]byte{0x42}}}

	_, err := rc.messageKey(ratchet.MsgIndex(configs.MaxSkippedMessageKeys + 10))
	assert.ErrorIs(t, err, ErrTooManySkippedKeys)
}

func TestCloneIsIndependent(t *testing.T) {
	now := time.Now()
	keys := newHandshakeKeys(t)
	state, err := InitializeAliceSession(keys.aliceParams(), now)
	require.NoError(t, err)

	rootBefore := state.RootKey
	privBefore := append(key_ed25519.PrivateKey(nil), state.RatchetKeyPair.Priv...)
	senderBefore := state.SenderChain.ChainKey
	receiverBefore := state.ReceiverChains[0].ChainKey

	c := state.clone()
	c.RatchetKeyPair.Zero()
	c.RootKey.Zero()
	c.ReceiverChains[0].Zero()
	c.SenderChain.ChainKey.Zero()

	assert.Equal(t, rootBefore, state.RootKey, "mutating a clone must not touch the original")
	assert.Equal(t, privBefore, state.RatchetKeyPair.Priv)
	assert.Equal(t, senderBefore, state.SenderChain.ChainKey)
	assert.Equal(t, receiverBefore, state.ReceiverChains[0].ChainKey)
}
