package session

import (
	"time"

	"e2ee-session/configs"
	"e2ee-session/crypto/key_ed25519"
	"e2ee-session/protocol/ratchet"
)

// CurrentVersion is the protocol version new sessions are created with.
const CurrentVersion = 3

// SenderChain is the single sending chain of a session state. The local
// ratchet pair it sends under lives in SessionState.RatchetKeyPair.
type SenderChain struct {
	ChainKey ratchet.ChainKey `json:"chain_key"`
}

// ReceiverChain is one receiving chain, keyed by the remote ratchet public
// key it was derived from, with message keys cached for out-of-order
// delivery.
type ReceiverChain struct {
	RatchetKey  key_ed25519.PublicKey                   `json:"ratchet_key"`
	ChainKey    ratchet.ChainKey                        `json:"chain_key"`
	SkippedKeys map[ratchet.MsgIndex]ratchet.MessageKey `json:"skipped_keys,omitempty"`
}

// SessionState holds the full ratchet material of one conversation
// generation. Not safe for concurrent use; callers serialize per address.
type SessionState struct {
	Version uint32 `json:"version"`

	LocalIdentityKey  key_ed25519.PublicKey `json:"local_identity_key,omitempty"`
	RemoteIdentityKey key_ed25519.PublicKey `json:"remote_identity_key,omitempty"`

	LocalRegistrationID  uint32 `json:"local_registration_id,omitempty"`
	RemoteRegistrationID uint32 `json:"remote_registration_id,omitempty"`

	RootKey ratchet.RootKey `json:"root_key"`

	// RatchetKeyPair is the local DH ratchet pair, replaced on every DH
	// ratchet step.
	RatchetKeyPair key_ed25519.Pair `json:"ratchet_key_pair"`

	SenderChain *SenderChain `json:"sender_chain,omitempty"`

	// PreviousCounter is the length of the previous sending chain (Pn).
	PreviousCounter ratchet.MsgIndex `json:"previous_counter,omitempty"`

	// ReceiverChains is ordered oldest-first; the last entry is the chain of
	// the most recently seen remote ratchet key.
	ReceiverChains []*ReceiverChain `json:"receiver_chains,omitempty"`

	// AliceBaseKey is the initiator's first ephemeral public key, kept to
	// recognize retransmitted handshake messages.
	AliceBaseKey key_ed25519.PublicKey `json:"alice_base_key,omitempty"`

	// CreatedAt is the session establishment time in unix milliseconds.
	CreatedAt int64 `json:"created_at,omitempty"`
}

// NewSessionState returns an empty state at the current protocol version.
// It has no chains and cannot encrypt or decrypt anything.
func NewSessionState() *SessionState {
	return &SessionState{Version: CurrentVersion}
}

// HasSenderChain reports whether this state can be used to send at the given
// time. A state past its TTL still holds chain data but is reported
// unusable so the caller can force a re-handshake.
func (s *SessionState) HasSenderChain(now time.Time) bool {
	if s == nil || s.SenderChain == nil {
		return false
	}
	age := now.UnixMilli() - s.CreatedAt
	return age <= configs.SessionTTL.Milliseconds()
}

// CurrentRatchetKeyMatches reports whether the sender chain's public ratchet
// key equals candidate.
func (s *SessionState) CurrentRatchetKeyMatches(candidate key_ed25519.PublicKey) bool {
	if s == nil || s.SenderChain == nil {
		return false
	}
	return s.RatchetKeyPair.Pub.Equals(candidate)
}

// ReceiverChain returns the receiving chain for the given remote ratchet
// key, or nil if this state has never ratcheted against it.
func (s *SessionState) ReceiverChain(ratchetKey key_ed25519.PublicKey) *ReceiverChain {
	if s == nil {
		return nil
	}
	for _, rc := range s.ReceiverChains {
		if rc.RatchetKey.Equals(ratchetKey) {
			return rc
		}
	}
	return nil
}

// AddReceiverChain appends a chain, evicting (and wiping) the oldest one
// once the configured bound is exceeded.
func (s *SessionState) AddReceiverChain(chain *ReceiverChain) {
	s.ReceiverChains = append(s.ReceiverChains, chain)
	for len(s.ReceiverChains) > configs.MaxReceiverChains {
		s.ReceiverChains[0].Zero()
		s.ReceiverChains = s.ReceiverChains[1:]
	}
}

func (s *SessionState) latestReceiverChain() *ReceiverChain {
	if s == nil || len(s.ReceiverChains) == 0 {
		return nil
	}
	return s.ReceiverChains[len(s.ReceiverChains)-1]
}

// ratchetReceive performs a full DH ratchet step for a newly seen remote
// ratchet key: close out the latest receiving chain, derive the new one,
// then rotate the local ratchet pair and sending chain so both directions
// advance together.
func (s *SessionState) ratchetReceive(header *ratchet.Header) (*ReceiverChain, error) {
	if prev := s.latestReceiverChain(); prev != nil {
		if err := prev.skipTo(header.Pn); err != nil {
			return nil, err
		}
	}

	recvRoot, recvChainKey, err := s.RootKey.CreateChain(header.RatchetPub, &s.RatchetKeyPair)
	if err != nil {
		return nil, err
	}

	newPair, err := key_ed25519.NewPair()
	if err != nil {
		return nil, err
	}
	sendRoot, sendChainKey, err := recvRoot.CreateChain(header.RatchetPub, newPair)
	if err != nil {
		return nil, err
	}

	if s.SenderChain != nil {
		s.PreviousCounter = s.SenderChain.ChainKey.Index
	}
	s.RatchetKeyPair.Zero()
	s.RatchetKeyPair = *newPair
	s.RootKey = sendRoot
	s.SenderChain = &SenderChain{ChainKey: sendChainKey}

	rc := &ReceiverChain{
		RatchetKey: append(key_ed25519.PublicKey(nil), header.RatchetPub...),
		ChainKey:   recvChainKey,
	}
	s.AddReceiverChain(rc)
	return rc, nil
}

// messageKey returns the message key for counter. Counters ahead of the
// chain advance it, caching the keys skipped over; counters behind it must
// hit the skipped-key cache or the key is gone for good.
func (rc *ReceiverChain) messageKey(counter ratchet.MsgIndex) (ratchet.MessageKey, error) {
	if counter < rc.ChainKey.Index {
		mk, ok := rc.SkippedKeys[counter]
		if !ok {
			return ratchet.MessageKey{}, ErrDuplicateMessage
		}
		delete(rc.SkippedKeys, counter)
		return mk, nil
	}

	if err := rc.skipTo(counter); err != nil {
		return ratchet.MessageKey{}, err
	}

	next, mk, err := rc.ChainKey.Advance()
	if err != nil {
		return ratchet.MessageKey{}, err
	}
	rc.ChainKey = next
	return mk, nil
}

// skipTo advances the chain up to (not including) counter, caching every
// skipped message key.
func (rc *ReceiverChain) skipTo(counter ratchet.MsgIndex) error {
	if counter > rc.ChainKey.Index &&
		counter-rc.ChainKey.Index > ratchet.MsgIndex(configs.MaxSkippedMessageKeys) {
		return ErrTooManySkippedKeys
	}

	for rc.ChainKey.Index < counter {
		next, mk, err := rc.ChainKey.Advance()
		if err != nil {
			return err
		}
		if rc.SkippedKeys == nil {
			rc.SkippedKeys = make(map[ratchet.MsgIndex]ratchet.MessageKey)
		}
		rc.SkippedKeys[rc.ChainKey.Index] = mk
		rc.ChainKey = next

		if len(rc.SkippedKeys) > configs.MaxSkippedMessageKeys {
			oldest := rc.ChainKey.Index
			for n := range rc.SkippedKeys {
				if n < oldest {
					oldest = n
				}
			}
			mk := rc.SkippedKeys[oldest]
			mk.Zero()
			delete(rc.SkippedKeys, oldest)
		}
	}
	return nil
}

// Zero wipes the chain key and every cached message key.
func (rc *ReceiverChain) Zero() {
	rc.ChainKey.Zero()
	for n, mk := range rc.SkippedKeys {
		mk.Zero()
		delete(rc.SkippedKeys, n)
	}
}

// Zero irrecoverably clears the state's secret material. Called when a
// state is evicted from a record's archive.
func (s *SessionState) Zero() {
	if s == nil {
		return
	}
	s.RootKey.Zero()
	s.RatchetKeyPair.Zero()
	if s.SenderChain != nil {
		s.SenderChain.ChainKey.Zero()
	}
	for _, rc := range s.ReceiverChains {
		rc.Zero()
	}
}

// clone returns a deep copy so a decrypt attempt can mutate freely and be
// committed only on success.
func (s *SessionState) clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.LocalIdentityKey = append(key_ed25519.PublicKey(nil), s.LocalIdentityKey...)
	c.RemoteIdentityKey = append(key_ed25519.PublicKey(nil), s.RemoteIdentityKey...)
	c.AliceBaseKey = append(key_ed25519.PublicKey(nil), s.AliceBaseKey...)
	c.RatchetKeyPair = key_ed25519.Pair{
		Priv: append(key_ed25519.PrivateKey(nil), s.RatchetKeyPair.Priv...),
		Pub:  append(key_ed25519.PublicKey(nil), s.RatchetKeyPair.Pub...),
	}
	if s.SenderChain != nil {
		sc := *s.SenderChain
		c.SenderChain = &sc
	}
	c.ReceiverChains = make([]*ReceiverChain, len(s.ReceiverChains))
	for i, rc := range s.ReceiverChains {
		cp := &ReceiverChain{
			RatchetKey: append(key_ed25519.PublicKey(nil), rc.RatchetKey...),
			ChainKey:   rc.ChainKey,
		}
		if rc.SkippedKeys != nil {
			cp.SkippedKeys = make(map[ratchet.MsgIndex]ratchet.MessageKey, len(rc.SkippedKeys))
			for n, mk := range rc.SkippedKeys {
				cp.SkippedKeys[n] = mk
			}
		}
		c.ReceiverChains[i] = cp
	}
	return &c
}
