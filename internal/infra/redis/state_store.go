package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skillbuilder-assessment/internal/domain"
)

const (
	banditStateKey     = "bandit:state"
	knowledgeKeyPrefix = "knowledge:"
)

// StateStore persists adaptive state in Redis so policy counters and user
// histories survive restarts. Bandit state is global; knowledge is keyed per
// user.
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateStore builds the store. A non-positive TTL keeps state forever.
func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	return &StateStore{client: client, ttl: ttl}
}

func (s *StateStore) SaveBanditState(ctx context.Context, state domain.BanditState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal bandit state: %w", err)
	}
	return s.client.Set(ctx, banditStateKey, raw, s.expiry()).Err()
}

func (s *StateStore) LoadBanditState(ctx context.Context) (domain.BanditState, bool, error) {
	raw, err := s.client.Get(ctx, banditStateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.BanditState{}, false, nil
	}
	if err != nil {
		return domain.BanditState{}, false, fmt.Errorf("load bandit state: %w", err)
	}
	var state domain.BanditState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.BanditState{}, false, fmt.Errorf("unmarshal bandit state: %w", err)
	}
	return state, true, nil
}

func (s *StateStore) SaveKnowledge(ctx context.Context, userID string, snapshot domain.KnowledgeSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal knowledge: %w", err)
	}
	return s.client.Set(ctx, knowledgeKeyPrefix+userID, raw, s.expiry()).Err()
}

func (s *StateStore) LoadKnowledge(ctx context.Context, userID string) (domain.KnowledgeSnapshot, bool, error) {
	raw, err := s.client.Get(ctx, knowledgeKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load knowledge: %w", err)
	}
	var snapshot domain.KnowledgeSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, fmt.Errorf("unmarshal knowledge: %w", err)
	}
	return snapshot, true, nil
}

func (s *StateStore) expiry() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	return s.ttl
}
