package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"skillbuilder-assessment/internal/domain"
)

func TestStateStoreBanditRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStateStore(client, time.Hour)
	ctx := context.Background()

	if _, ok, err := store.LoadBanditState(ctx); err != nil || ok {
		t.Fatalf("empty store returned ok=%v err=%v", ok, err)
	}

	want := domain.BanditState{
		ArmCounts:  []float64{5, 2, 1},
		ArmRewards: []float64{4.2, 1.1, 0.3},
		Epsilon:    0.08,
	}
	if err := store.SaveBanditState(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.LoadBanditState(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Epsilon != want.Epsilon || got.ArmCounts[0] != want.ArmCounts[0] || got.ArmRewards[2] != want.ArmRewards[2] {
		t.Fatalf("loaded %+v, want %+v", got, want)
	}
}

func TestStateStoreKnowledgeRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStateStore(client, 0)
	ctx := context.Background()

	snapshot := domain.KnowledgeSnapshot{
		"Python": {0.4, 0.6, 0.8},
		"SQL":    {0.9},
	}
	if err := store.SaveKnowledge(ctx, "u1", snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.LoadKnowledge(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got["Python"]) != 3 || got["SQL"][0] != 0.9 {
		t.Fatalf("loaded snapshot %+v, want %+v", got, snapshot)
	}

	if _, ok, _ := store.LoadKnowledge(ctx, "stranger"); ok {
		t.Fatalf("unexpected knowledge for unknown user")
	}
}
