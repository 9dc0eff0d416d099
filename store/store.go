package store

import (
	"context"
	"fmt"

	"e2ee-session/protocol/session"
)

// Address identifies a remote device instance: peer name plus device id.
type Address struct {
	Name     string
	DeviceID uint32
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Name, a.DeviceID)
}

// SessionStore loads and persists serialized session records keyed by
// address. Records are not thread-safe, so implementations must give the
// caller a way to serialize one logical operation per address; see Sync on
// the in-memory implementation.
type SessionStore interface {
	// LoadSession returns the record for addr, or a fresh record if none
	// is stored yet.
	LoadSession(ctx context.Context, addr Address) (*session.SessionRecord, error)
	StoreSession(ctx context.Context, addr Address, record *session.SessionRecord) error
	ContainsSession(ctx context.Context, addr Address) (bool, error)
	DeleteSession(ctx context.Context, addr Address) error
	DeleteAllSessions(ctx context.Context, name string) error
}
