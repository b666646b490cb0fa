package memory

import (
	"context"
	"sync"

	"skillbuilder-assessment/internal/domain"
)

// StateStore keeps adaptive state in process memory. It satisfies
// app.StateStore for single-instance deployments without Redis; state is
// lost on restart.
type StateStore struct {
	mu        sync.RWMutex
	bandit    *domain.BanditState
	knowledge map[string]domain.KnowledgeSnapshot
}

func NewStateStore() *StateStore {
	return &StateStore{
		knowledge: make(map[string]domain.KnowledgeSnapshot),
	}
}

func (s *StateStore) SaveBanditState(_ context.Context, state domain.BanditState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bandit = &state
	return nil
}

func (s *StateStore) LoadBanditState(_ context.Context) (domain.BanditState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bandit == nil {
		return domain.BanditState{}, false, nil
	}
	return *s.bandit, true, nil
}

func (s *StateStore) SaveKnowledge(_ context.Context, userID string, snapshot domain.KnowledgeSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(domain.KnowledgeSnapshot, len(snapshot))
	for topic, history := range snapshot {
		copied[topic] = append([]float64(nil), history...)
	}
	s.knowledge[userID] = copied
	return nil
}

func (s *StateStore) LoadKnowledge(_ context.Context, userID string) (domain.KnowledgeSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.knowledge[userID]
	if !ok {
		return nil, false, nil
	}
	copied := make(domain.KnowledgeSnapshot, len(snapshot))
	for topic, history := range snapshot {
		copied[topic] = append([]float64(nil), history...)
	}
	return copied, true, nil
}
