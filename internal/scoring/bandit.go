package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"skillbuilder-assessment/internal/domain"
)

const (
	numArms     = 3
	contextSize = 6

	epsilonStart = 0.2
	epsilonDecay = 0.995
	epsilonFloor = 0.05

	similarityGate = 0.15
)

var armDescriptions = [numArms]string{
	"Conservative Scoring (High threshold)",
	"Balanced Scoring (Medium threshold)",
	"Liberal Scoring (Rewards partial answers)",
}

// armWeights are deterministic per-arm blends over the normalized context
// vector [similarity, difficulty, log-time, mastery, previous performance,
// time bonus]. They replace the original per-arm networks while keeping the
// selection mechanics intact.
var armWeights = [numArms][contextSize]float64{
	{0.85, -0.10, -0.05, 0.10, 0.10, 0.05}, // conservative: similarity or nothing
	{0.50, 0.05, 0.00, 0.15, 0.15, 0.10},   // balanced
	{0.35, 0.10, 0.05, 0.20, 0.15, 0.15},   // liberal: context can lift partial answers
}

var armBias = [numArms]float64{0.0, 0.05, 0.15}

// ArmStat is the queryable state of one scoring policy.
type ArmStat struct {
	ID             int     `json:"arm_id"`
	Name           string  `json:"name"`
	SelectionCount float64 `json:"selection_count"`
	TotalReward    float64 `json:"total_reward"`
	AvgReward      float64 `json:"avg_reward"`
	Confidence     float64 `json:"confidence"`
}

// BanditStatistics summarizes all arms.
type BanditStatistics struct {
	Arms            []ArmStat `json:"arms"`
	ExplorationRate float64   `json:"exploration_rate"`
	TotalSelections float64   `json:"total_selections"`
}

// BanditSelector chooses among scoring policies with epsilon-greedy
// exploration and blends the winner's output with a similarity floor
// cascade. Counters persist for the process lifetime and can be saved and
// restored as a flat record. Access is serialized internally.
type BanditSelector struct {
	mu      sync.Mutex
	epsilon float64
	counts  [numArms]float64
	rewards [numArms]float64
	rnd     *rand.Rand
}

func NewBanditSelector() *BanditSelector {
	return &BanditSelector{
		epsilon: epsilonStart,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Score blends the selected policy's output with the similarity floor
// cascade and returns the final score, the policy index, and its
// description.
func (b *BanditSelector) Score(similarity, difficulty, elapsed, topicMastery, previousPerformance, timeBonus float64) (float64, int, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	context := contextVector(similarity, difficulty, elapsed, topicMastery, previousPerformance, timeBonus)

	var candidates [numArms]float64
	for arm := 0; arm < numArms; arm++ {
		candidates[arm] = armScore(arm, context)
	}

	var arm int
	if b.rnd.Float64() < b.epsilon {
		arm = b.rnd.Intn(numArms)
	} else {
		for i := 1; i < numArms; i++ {
			if candidates[i] > candidates[arm] {
				arm = i
			}
		}
	}

	// Hard gate: context must never inflate a clearly wrong answer.
	if similarity < similarityGate {
		return similarity, arm, armDescriptions[arm] + " [gated]"
	}

	raw := candidates[arm]

	// Floor cascade: the policy output is only a lower bound that these
	// bands override upward, never downward. Thresholds are behavioral
	// compatibility constants.
	switch {
	case similarity >= 0.85:
		raw = 1.0
	case similarity >= 0.7:
		raw = maxFloat(raw, 0.95)
	case similarity >= 0.5:
		raw = maxFloat(raw, 0.85)
	case similarity >= 0.35:
		raw = maxFloat(raw, 0.70)
	}

	if similarity > 0.6 {
		raw = maxFloat(raw, similarity*1.3)
	}

	final := math.Min(1.0, raw+timeBonus)

	// The policy layer must never score far below raw similarity.
	if final < similarity*0.9 {
		final = similarity
	}

	return final, arm, armDescriptions[arm]
}

// UpdateReward records explicit reward feedback for an arm and decays the
// exploration rate toward its floor.
func (b *BanditSelector) UpdateReward(arm int, reward float64) {
	if arm < 0 || arm >= numArms {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.counts[arm]++
	b.rewards[arm] += reward
	b.epsilon = math.Max(epsilonFloor, b.epsilon*epsilonDecay)
}

// Statistics returns the per-arm counters and the current exploration rate.
func (b *BanditSelector) Statistics() BanditStatistics {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := BanditStatistics{ExplorationRate: b.epsilon}
	for i := 0; i < numArms; i++ {
		avg := 0.0
		if b.counts[i] > 0 {
			avg = b.rewards[i] / b.counts[i]
		}
		stats.Arms = append(stats.Arms, ArmStat{
			ID:             i,
			Name:           armDescriptions[i],
			SelectionCount: b.counts[i],
			TotalReward:    b.rewards[i],
			AvgReward:      avg,
			Confidence:     math.Min(0.95, b.counts[i]/100),
		})
		stats.TotalSelections += b.counts[i]
	}
	return stats
}

// SaveState exports the flat persistence record.
func (b *BanditSelector) SaveState() domain.BanditState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return domain.BanditState{
		ArmCounts:  append([]float64(nil), b.counts[:]...),
		ArmRewards: append([]float64(nil), b.rewards[:]...),
		Epsilon:    b.epsilon,
	}
}

// RestoreState loads a previously saved record. Shape validation only:
// wrong arm count or negative counters fail fast with ErrInvalidState.
func (b *BanditSelector) RestoreState(state domain.BanditState) error {
	if len(state.ArmCounts) != numArms || len(state.ArmRewards) != numArms {
		return fmt.Errorf("%w: expected %d arms, got counts=%d rewards=%d",
			domain.ErrInvalidState, numArms, len(state.ArmCounts), len(state.ArmRewards))
	}
	for _, c := range state.ArmCounts {
		if c < 0 {
			return fmt.Errorf("%w: negative selection count", domain.ErrInvalidState)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.counts[:], state.ArmCounts)
	copy(b.rewards[:], state.ArmRewards)
	b.epsilon = state.Epsilon
	return nil
}

func contextVector(similarity, difficulty, elapsed, topicMastery, previousPerformance, timeBonus float64) [contextSize]float64 {
	return [contextSize]float64{
		similarity,
		difficulty,
		math.Log1p(elapsed) / 10,
		topicMastery,
		previousPerformance,
		timeBonus,
	}
}

func armScore(arm int, context [contextSize]float64) float64 {
	score := armBias[arm]
	for i := 0; i < contextSize; i++ {
		score += armWeights[arm][i] * context[i]
	}
	return clamp01(score)
}
