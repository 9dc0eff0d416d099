package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"e2ee-session/protocol/session"
)

// InMemorySessionStore keeps serialized records in a map. Records go through
// a full serialize/deserialize round trip on every access, the same path a
// persistent backend would use.
type InMemorySessionStore struct {
	mutex    sync.Mutex
	sessions map[Address][]byte
	locks    map[Address]*sync.Mutex
	logger   *logrus.Logger
}

func NewInMemorySessionStore(logger *logrus.Logger) *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[Address][]byte),
		locks:    make(map[Address]*sync.Mutex),
		logger:   logger,
	}
}

// Sync runs fn while holding the per-address lock, serializing mutations of
// one conversation's record for the duration of a logical operation.
func (s *InMemorySessionStore) Sync(addr Address, fn func() error) error {
	s.mutex.Lock()
	lock, ok := s.locks[addr]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[addr] = lock
	}
	s.mutex.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

func (s *InMemorySessionStore) LoadSession(_ context.Context, addr Address) (*session.SessionRecord, error) {
	s.mutex.Lock()
	data, ok := s.sessions[addr]
	s.mutex.Unlock()

	if !ok {
		return session.NewSessionRecord(nil), nil
	}
	record, err := session.Deserialize(data)
	if err != nil {
		s.logger.Errorf("Failed to deserialize session for %s: %v", addr, err)
		return nil, err
	}
	return record, nil
}

func (s *InMemorySessionStore) StoreSession(_ context.Context, addr Address, record *session.SessionRecord) error {
	data, err := record.Serialize()
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.sessions[addr] = data
	s.mutex.Unlock()
	s.logger.Debugf("Stored session for %s (%d bytes)", addr, len(data))
	return nil
}

func (s *InMemorySessionStore) ContainsSession(_ context.Context, addr Address) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.sessions[addr]
	return ok, nil
}

func (s *InMemorySessionStore) DeleteSession(_ context.Context, addr Address) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, addr)
	return nil
}

func (s *InMemorySessionStore) DeleteAllSessions(_ context.Context, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for addr := range s.sessions {
		if addr.Name == name {
			delete(s.sessions, addr)
		}
	}
	return nil
}
