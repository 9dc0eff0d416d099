package session

import "errors"

var (
	// ErrInvalidKey signals malformed or wrong-length key material supplied
	// by the caller.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrInvalidSession signals a corrupt serialized record; deserialization
	// fails closed and never returns a partially populated record.
	ErrInvalidSession = errors.New("invalid session encoding")

	// ErrUnsupportedVersion signals a serialized record whose version tag is
	// not understood.
	ErrUnsupportedVersion = errors.New("unsupported session version")

	// ErrUnknownRatchetKey signals that no receiving chain matches a ratchet
	// key, a strong indicator of a replayed or corrupted message.
	ErrUnknownRatchetKey = errors.New("unknown ratchet key")

	// ErrDuplicateMessage signals a counter whose message key was already
	// consumed and is no longer derivable.
	ErrDuplicateMessage = errors.New("message key already consumed")

	ErrTooManySkippedKeys   = errors.New("skipping too many message keys")
	ErrUninitializedSession = errors.New("session not initialized")
)
