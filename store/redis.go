package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"e2ee-session/configs"
	"e2ee-session/protocol/session"
)

// RedisSessionStore persists serialized session records in Redis, one key
// per address.
type RedisSessionStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisSessionStore(client *redis.Client, logger *logrus.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		logger: logger,
	}
}

func sessionKey(addr Address) string {
	return fmt.Sprintf(configs.SessionKeyFmt, addr.Name, addr.DeviceID)
}

func (s *RedisSessionStore) LoadSession(ctx context.Context, addr Address) (*session.SessionRecord, error) {
	data, err := s.client.Get(ctx, sessionKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.NewSessionRecord(nil), nil
	}
	if err != nil {
		s.logger.Errorf("Failed to load session for %s: %v", addr, err)
		return nil, err
	}

	record, err := session.Deserialize(data)
	if err != nil {
		s.logger.Errorf("Corrupt session for %s: %v", addr, err)
		return nil, err
	}
	return record, nil
}

func (s *RedisSessionStore) StoreSession(ctx context.Context, addr Address, record *session.SessionRecord) error {
	data, err := record.Serialize()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(addr), data, 0).Err(); err != nil {
		s.logger.Errorf("Failed to store session for %s: %v", addr, err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) ContainsSession(ctx context.Context, addr Address) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(addr)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, addr Address) error {
	return s.client.Del(ctx, sessionKey(addr)).Err()
}

func (s *RedisSessionStore) DeleteAllSessions(ctx context.Context, name string) error {
	pattern := fmt.Sprintf("session:%s:*", name)
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
