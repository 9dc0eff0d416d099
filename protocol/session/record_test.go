package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ee-session/configs"
	"e2ee-session/protocol/ratchet"
)

func TestArchiveCurrentState(t *testing.T) {
	now := time.Now()
	keys := newHandshakeKeys(t)
	state, err := InitializeAliceSession(keys.aliceParams(), now)
	require.NoError(t, err)

	record := NewSessionRecord(state)
	record.ArchiveCurrentState()

	require.Len(t, record.PreviousStates, 1)
	assert.Same(t, state, record.PreviousStates[0], "old current state becomes the newest archived entry")
	assert.Nil(t, record.CurrentState.SenderChain)
	assert.Empty(t, record.CurrentState.ReceiverChains)
	assert.False(t, record.CurrentState.HasSenderChain(now))
}

func TestArchiveEmptyStateStillArchives(t *testing.T) {
	record := NewSessionRecord(nil)

	record.ArchiveCurrentState()
	assert.Len(t, record.PreviousStates, 1)

	record.ArchiveCurrentState()
	assert.Len(t, record.PreviousStates, 2)
}

func TestArchiveBound(t *testing.T) {
	record := NewSessionRecord(nil)
	for i := 0; i < configs.MaxArchivedStates+7; i++ {
		record.ArchiveCurrentState()
	}
	assert.Len(t, record.PreviousStates, configs.MaxArchivedStates)
}

func TestArchiveOrderIsMostRecentFirst(t *testing.T) {
	record := NewSessionRecord(nil)

	first := record.CurrentState
	record.ArchiveCurrentState()
	second := record.CurrentState
	record.ArchiveCurrentState()

	require.Len(t, record.PreviousStates, 2)
	assert.Same(t, second, record.PreviousStates[0])
	assert.Same(t, first, record.PreviousStates[1])
}

func TestFindReceivingChainCurrentWins(t *testing.T) {
	ratchetKey := newPair(t).Pub

	archived := NewSessionState()
	archived.AddReceiverChain(&ReceiverChain{
		RatchetKey: ratchetKey,
		ChainKey:   ratchet.ChainKey{Key: [32]byte{0x01}},
	})

	current := NewSessionState()
	current.AddReceiverChain(&ReceiverChain{
		RatchetKey: ratchetKey,
		ChainKey:   ratchet.ChainKey{Key: [32]byte{0x02}},
	})

	record := NewSessionRecord(archived)
	record.ArchiveCurrentState()
	record.CurrentState = current

	state, chain, err := record.FindReceivingChain(ratchetKey)
	require.NoError(t, err)
	assert.Same(t, current, state)
	assert.Equal(t, [32]byte{0x02}, chain.ChainKey.Key)
}

func TestFindReceivingChainUnknownKey(t *testing.T) {
	record := NewSessionRecord(nil)
	_, _, err := record.FindReceivingChain(newPair(t).Pub)
	assert.ErrorIs(t, err, ErrUnknownRatchetKey)
}

func TestFindReceivingChainSearchesArchive(t *testing.T) {
	ratchetKey := newPair(t).Pub

	archived := NewSessionState()
	archived.AddReceiverChain(&ReceiverChain{
		RatchetKey: ratchetKey,
		ChainKey:   ratchet.ChainKey{Key: [32]byte{0x01}},
	})

	record := NewSessionRecord(archived)
	record.ArchiveCurrentState()

	state, chain, err := record.FindReceivingChain(ratchetKey)
	require.NoError(t, err)
	assert.Same(t, archived, state)
	assert.Equal(t, [32]byte{0x01}, chain.ChainKey.Key)
}

func TestHasSessionState(t *testing.T) {
	now := time.Now()
	keys := newHandshakeKeys(t)
	state, err := InitializeAliceSession(keys.aliceParams(), now)
	require.NoError(t, err)

	record := NewSessionRecord(state)
	assert.True(t, record.HasSessionState(CurrentVersion, keys.aliceBase.Pub))
	assert.False(t, record.HasSessionState(CurrentVersion, newPair(t).Pub))
	assert.False(t, record.HasSessionState(CurrentVersion-1, keys.aliceBase.Pub))

	// Still found after archival
	record.ArchiveCurrentState()
	assert.True(t, record.HasSessionState(CurrentVersion, keys.aliceBase.Pub))
}

func TestSerializeRoundTrip(t *testing.T) {
	now := time.Now()
	aliceRecord, bobRecord := establishSessions(t, now)

	// Exchange a couple of messages so both records carry live chains.
	for i := 0; i < 3; i++ {
		header, ciphertext, err := EncryptMessage(aliceRecord, []byte("ping"), nil, now)
		require.NoError(t, err)
		_, err = DecryptMessage(bobRecord, header, ciphertext, nil)
		require.NoError(t, err)
	}
	aliceRecord.ArchiveCurrentState()

	for _, record := range []*SessionRecord{aliceRecord, bobRecord} {
		data, err := record.Serialize()
		require.NoError(t, err)

		restored, err := Deserialize(data)
		require.NoError(t, err)
		assert.Equal(t, record, restored, "round trip must be lossless")
	}
}

func TestDeserializeFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "garbage bytes",
			data:    []byte("not json at all"),
			wantErr: ErrInvalidSession,
		},
		{
			name:    "unknown format tag",
			data:    []byte(`{"format":99}`),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing format tag",
			data:    []byte(`{}`),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unsupported state version",
			data:    []byte(`{"format":1,"current":{"version":99,"root_key":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"ratchet_key_pair":{"priv":null,"pub":null}}}`),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "truncated key material",
			data:    []byte(`{"format":1,"current":{"version":3,"root_key":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"ratchet_key_pair":{"priv":"AAEC","pub":null}}}`),
			wantErr: ErrInvalidSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Deserialize(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, record, "failed deserialization must not return a record")
		})
	}
}
