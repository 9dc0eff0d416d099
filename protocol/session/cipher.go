package session

import (
	"errors"
	"time"

	"e2ee-session/protocol/ratchet"
)

// EncryptMessage advances the current state's sending chain by one and
// seals plaintext under the derived message key. The chain is committed
// only once sealing succeeded, so a failed call leaves the record unchanged.
func EncryptMessage(record *SessionRecord, plaintext, associatedData []byte, now time.Time) (*ratchet.Header, []byte, error) {
	state := record.CurrentState
	if !state.HasSenderChain(now) {
		return nil, nil, ErrUninitializedSession
	}

	counter := state.SenderChain.ChainKey.Index
	nextChain, mk, err := state.SenderChain.ChainKey.Advance()
	if err != nil {
		return nil, nil, err
	}
	keys, err := mk.Expand(counter)
	mk.Zero()
	if err != nil {
		return nil, nil, err
	}

	header := &ratchet.Header{
		RatchetPub: state.RatchetKeyPair.Pub,
		Pn:         state.PreviousCounter,
		N:          counter,
	}
	ad, err := adWithHeader(associatedData, header)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, err := ratchet.Seal(keys, plaintext, ad)
	if err != nil {
		return nil, nil, err
	}

	state.SenderChain.ChainKey = nextChain
	return header, ciphertext, nil
}

// DecryptMessage opens a message against the record: the current state
// first (ratcheting if the header carries a new remote key), then the
// archived states most-recent-first. A state that only matched from the
// archive is promoted back to current. All work happens on copies; nothing
// is committed unless decryption succeeded.
func DecryptMessage(record *SessionRecord, header *ratchet.Header, ciphertext, associatedData []byte) ([]byte, error) {
	currentErr := error(ErrUninitializedSession)
	if record.CurrentState != nil {
		candidate := record.CurrentState.clone()
		plaintext, err := decryptWithState(candidate, header, ciphertext, associatedData, true)
		if err == nil {
			record.CurrentState = candidate
			return plaintext, nil
		}
		currentErr = err
	}

	var archivedErr error
	for i, state := range record.PreviousStates {
		candidate := state.clone()
		plaintext, err := decryptWithState(candidate, header, ciphertext, associatedData, false)
		if err == nil {
			record.PreviousStates[i] = candidate
			record.PromoteState(candidate)
			return plaintext, nil
		}
		if archivedErr == nil && !errors.Is(err, ErrUnknownRatchetKey) {
			archivedErr = err
		}
	}

	if archivedErr != nil {
		return nil, archivedErr
	}
	return nil, currentErr
}

// decryptWithState mutates state freely; the caller decides whether to
// commit it. Archived states may only use chains they already have: a new
// remote ratchet key must ratchet the current state, never an old one.
func decryptWithState(state *SessionState, header *ratchet.Header, ciphertext, associatedData []byte, allowRatchet bool) ([]byte, error) {
	chain := state.ReceiverChain(header.RatchetPub)
	if chain == nil {
		if !allowRatchet {
			return nil, ErrUnknownRatchetKey
		}
		if state.RatchetKeyPair.IsEmpty() {
			return nil, ErrUninitializedSession
		}
		var err error
		chain, err = state.ratchetReceive(header)
		if err != nil {
			return nil, err
		}
	}

	mk, err := chain.messageKey(header.N)
	if err != nil {
		return nil, err
	}
	keys, err := mk.Expand(header.N)
	mk.Zero()
	if err != nil {
		return nil, err
	}

	ad, err := adWithHeader(associatedData, header)
	if err != nil {
		return nil, err
	}
	return ratchet.Open(keys, ciphertext, ad)
}

func adWithHeader(associatedData []byte, header *ratchet.Header) ([]byte, error) {
	headerBytes, err := header.Marshal()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(associatedData)+len(headerBytes))
	out = append(out, associatedData...)
	return append(out, headerBytes...), nil
}
