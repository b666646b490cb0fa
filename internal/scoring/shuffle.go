package scoring

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"skillbuilder-assessment/internal/domain"
)

const (
	maxSessionQuestions = 10
	// DefaultMaxTime is the per-question budget the time bonus measures
	// against.
	DefaultMaxTime = 120.0
	timeBonusCap   = 0.1
)

// Orchestrator handles deterministic question ordering for a session.
type Orchestrator struct {
	clock func() time.Time
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{clock: time.Now}
}

// NewOrchestratorWithClock is test-only for deterministic shuffle days.
func NewOrchestratorWithClock(clock func() time.Time) *Orchestrator {
	return &Orchestrator{clock: clock}
}

// Shuffle returns up to ten questions in an order that is stable for the
// same user on the same calendar day and differs across users. The input
// slice is not mutated.
func (o *Orchestrator) Shuffle(questions []domain.Question, userID string) []domain.Question {
	day := o.clock().Format("2006-01-02")
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s", userID, day)))
	seed := binary.BigEndian.Uint32(sum[:4])

	out := make([]domain.Question, len(questions))
	copy(out, questions)

	rnd := rand.New(rand.NewSource(int64(seed)))
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	if len(out) > maxSessionQuestions {
		out = out[:maxSessionQuestions]
	}
	return out
}

// TimeBonus rewards answering faster than the time budget, capped at 10%.
func TimeBonus(elapsed, maxTime float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	if maxTime <= 0 {
		maxTime = DefaultMaxTime
	}
	return math.Max(0, 1-elapsed/maxTime) * timeBonusCap
}
