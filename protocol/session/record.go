package session

import (
	"e2ee-session/configs"
	"e2ee-session/crypto/key_ed25519"
)

// SessionRecord owns the live session state for one conversation plus a
// bounded, most-recent-first archive of superseded states, so messages sent
// under an older ratchet can still be decrypted.
//
// A record is not safe for concurrent use; the owning store must serialize
// mutations per address.
type SessionRecord struct {
	CurrentState   *SessionState
	PreviousStates []*SessionState
}

// NewSessionRecord wraps a freshly initialized state. A nil state yields a
// fresh record with an empty current state.
func NewSessionRecord(state *SessionState) *SessionRecord {
	if state == nil {
		state = NewSessionState()
	}
	return &SessionRecord{CurrentState: state}
}

// ArchiveCurrentState moves the current state to the front of the archive
// and replaces it with a fresh empty one. Archiving an already-empty current
// state is allowed; pruning before a new handshake relies on it.
func (r *SessionRecord) ArchiveCurrentState() {
	r.pushPrevious(r.CurrentState)
	r.CurrentState = NewSessionState()
}

func (r *SessionRecord) pushPrevious(state *SessionState) {
	if state == nil {
		state = NewSessionState()
	}
	r.PreviousStates = append([]*SessionState{state}, r.PreviousStates...)
	for len(r.PreviousStates) > configs.MaxArchivedStates {
		last := r.PreviousStates[len(r.PreviousStates)-1]
		last.Zero()
		r.PreviousStates = r.PreviousStates[:len(r.PreviousStates)-1]
	}
}

// FindReceivingChain searches the current state first, then the archive
// most-recent-first, and returns the owning state together with the chain.
// A miss is reported as ErrUnknownRatchetKey and must not be ignored: it is
// a strong indicator of replay or corruption.
func (r *SessionRecord) FindReceivingChain(ratchetKey key_ed25519.PublicKey) (*SessionState, *ReceiverChain, error) {
	if chain := r.CurrentState.ReceiverChain(ratchetKey); chain != nil {
		return r.CurrentState, chain, nil
	}
	for _, state := range r.PreviousStates {
		if chain := state.ReceiverChain(ratchetKey); chain != nil {
			return state, chain, nil
		}
	}
	return nil, nil, ErrUnknownRatchetKey
}

// PromoteState makes an archived state current again, archiving the state
// it replaces. Used when an inbound message matched an older generation.
func (r *SessionRecord) PromoteState(promoted *SessionState) {
	r.removePreviousState(promoted)
	old := r.CurrentState
	r.CurrentState = promoted
	r.pushPrevious(old)
}

func (r *SessionRecord) removePreviousState(state *SessionState) {
	for i, s := range r.PreviousStates {
		if s == state {
			r.PreviousStates = append(r.PreviousStates[:i], r.PreviousStates[i+1:]...)
			return
		}
	}
}

// HasSessionState reports whether any state (current or archived) was
// established at the given version from the given initiator base key. The
// session store uses it to spot retransmitted handshake messages.
func (r *SessionRecord) HasSessionState(version uint32, aliceBaseKey key_ed25519.PublicKey) bool {
	if r.CurrentState != nil &&
		r.CurrentState.Version == version &&
		r.CurrentState.AliceBaseKey.Equals(aliceBaseKey) {
		return true
	}
	for _, state := range r.PreviousStates {
		if state.Version == version && state.AliceBaseKey.Equals(aliceBaseKey) {
			return true
		}
	}
	return false
}
