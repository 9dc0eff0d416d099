package session

import (
	"encoding/json"
	"fmt"
)

// recordFormatVersion tags the serialized encoding, read before anything
// else so unknown layouts fail with a distinct error.
const recordFormatVersion = 1

type recordEnvelope struct {
	Format   uint32          `json:"format"`
	Current  *SessionState   `json:"current,omitempty"`
	Previous []*SessionState `json:"previous,omitempty"`
}

// Serialize encodes the full record, current and archived states included.
// Consumed message keys are gone by construction; serialization does not
// resurrect them.
func (r *SessionRecord) Serialize() ([]byte, error) {
	env := recordEnvelope{
		Format:   recordFormatVersion,
		Current:  r.CurrentState,
		Previous: r.PreviousStates,
	}
	return json.Marshal(env)
}

// Deserialize reconstructs a record from persisted bytes. It fails closed:
// a corrupt payload or unknown format tag yields an error and no record.
func Deserialize(data []byte) (*SessionRecord, error) {
	var env recordEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if env.Format != recordFormatVersion {
		return nil, fmt.Errorf("%w: record format %d", ErrUnsupportedVersion, env.Format)
	}

	if err := validateState(env.Current); err != nil {
		return nil, err
	}
	for _, state := range env.Previous {
		if err := validateState(state); err != nil {
			return nil, err
		}
	}

	record := &SessionRecord{
		CurrentState:   env.Current,
		PreviousStates: env.Previous,
	}
	if record.CurrentState == nil {
		record.CurrentState = NewSessionState()
	}
	return record, nil
}

func validateState(s *SessionState) error {
	if s == nil {
		return nil
	}
	if s.Version == 0 || s.Version > CurrentVersion {
		return fmt.Errorf("%w: session version %d", ErrUnsupportedVersion, s.Version)
	}
	for _, key := range [][]byte{
		s.LocalIdentityKey,
		s.RemoteIdentityKey,
		s.AliceBaseKey,
		s.RatchetKeyPair.Pub,
		s.RatchetKeyPair.Priv,
	} {
		if len(key) != 0 && len(key) != 32 {
			return fmt.Errorf("%w: key length %d", ErrInvalidSession, len(key))
		}
	}
	for _, rc := range s.ReceiverChains {
		if len(rc.RatchetKey) != 32 {
			return fmt.Errorf("%w: ratchet key length %d", ErrInvalidSession, len(rc.RatchetKey))
		}
	}
	return nil
}
