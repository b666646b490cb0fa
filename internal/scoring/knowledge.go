package scoring

import (
	"math"
	"sync"
)

const (
	historyLimit         = 20
	defaultMastery       = 0.1
	defaultConfidence    = 0.1
	singleSampleStdDev   = 0.5
	defaultConsistency   = 0.5
	topicQueryLimit      = 5
	weakTopicThreshold   = 0.4
	strongTopicThreshold = 0.7
)

// TopicMastery is the derived view of one topic for one user.
type TopicMastery struct {
	Mastery    float64 `json:"mastery"`
	Confidence float64 `json:"confidence"`
	Level      string  `json:"level"`
	Attempts   int     `json:"attempts"`
}

// KnowledgeTracker maintains per-(user, topic) performance histories and
// derives mastery estimates. All access is serialized internally; callers
// need no external locking.
type KnowledgeTracker struct {
	mu        sync.Mutex
	histories map[string]map[string][]float64
	// One online estimator per topic, shared across users, mirroring the
	// per-topic regressors this replaces.
	estimators map[string]*emaEstimator
}

// emaEstimator is the accepted substitute for a per-topic online
// regressor: an exponential moving average that converges toward recent
// performance, stepping faster when the answer came quickly.
type emaEstimator struct {
	value       float64
	initialized bool
}

const emaBaseAlpha = 0.3

func (e *emaEstimator) update(performance, timeEfficiency float64) float64 {
	if !e.initialized {
		e.value = performance
		e.initialized = true
		return e.value
	}
	alpha := emaBaseAlpha * clamp01(0.5+0.5*timeEfficiency)
	e.value += alpha * (performance - e.value)
	return e.value
}

func NewKnowledgeTracker() *KnowledgeTracker {
	return &KnowledgeTracker{
		histories:  make(map[string]map[string][]float64),
		estimators: make(map[string]*emaEstimator),
	}
}

// Update appends a performance sample to the (user, topic) history, evicting
// the oldest entry beyond the bound, and returns the instantaneous estimate
// with a consistency-based confidence. The whole read-modify-write is one
// atomic unit.
func (k *KnowledgeTracker) Update(user, topic string, performance, difficulty, elapsed, timeEfficiency float64) (float64, float64) {
	performance = clamp01(performance)

	k.mu.Lock()
	defer k.mu.Unlock()

	topics, ok := k.histories[user]
	if !ok {
		topics = make(map[string][]float64)
		k.histories[user] = topics
	}
	history := append(topics[topic], performance)
	if len(history) > historyLimit {
		history = history[1:]
	}
	topics[topic] = history

	est, ok := k.estimators[topic]
	if !ok {
		est = &emaEstimator{}
		k.estimators[topic] = est
	}
	estimate := est.update(performance, timeEfficiency)

	return estimate, confidenceOf(history)
}

// Mastery returns the recency-weighted mastery and confidence for a topic.
// Unseen topics report (0.1, 0.1): insufficient data, not zero skill.
func (k *KnowledgeTracker) Mastery(user, topic string) (float64, float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.masteryLocked(user, topic)
}

func (k *KnowledgeTracker) masteryLocked(user, topic string) (float64, float64) {
	history := k.histories[user][topic]
	if len(history) == 0 {
		return defaultMastery, defaultConfidence
	}

	// Linear recency weights: the most recent sample weighs highest.
	var weightSum, weighted float64
	for i, perf := range history {
		w := float64(i + 1)
		weightSum += w
		weighted += w * perf
	}
	return weighted / weightSum, confidenceOf(history)
}

func confidenceOf(history []float64) float64 {
	return 1.0 / (1.0 + stdDev(history))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return singleSampleStdDev
	}
	return math.Sqrt(variance(values))
}

func variance(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// WeakTopics lists up to five topics below the threshold, in fixed
// vocabulary order. Unseen topics count as weak (default mastery 0.1).
func (k *KnowledgeTracker) WeakTopics(user string, threshold float64) []string {
	if threshold <= 0 {
		threshold = weakTopicThreshold
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	var out []string
	for _, topic := range TopicNames {
		mastery, _ := k.masteryLocked(user, topic)
		if mastery < threshold {
			out = append(out, topic)
			if len(out) == topicQueryLimit {
				break
			}
		}
	}
	return out
}

// StrongTopics lists up to five topics at or above the threshold, in fixed
// vocabulary order.
func (k *KnowledgeTracker) StrongTopics(user string, threshold float64) []string {
	if threshold <= 0 {
		threshold = strongTopicThreshold
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	var out []string
	for _, topic := range TopicNames {
		mastery, _ := k.masteryLocked(user, topic)
		if mastery >= threshold {
			out = append(out, topic)
			if len(out) == topicQueryLimit {
				break
			}
		}
	}
	return out
}

// AllMastery reports every vocabulary topic for a user.
func (k *KnowledgeTracker) AllMastery(user string) map[string]TopicMastery {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make(map[string]TopicMastery, len(TopicNames))
	for _, topic := range TopicNames {
		mastery, confidence := k.masteryLocked(user, topic)
		out[topic] = TopicMastery{
			Mastery:    mastery,
			Confidence: confidence,
			Level:      masteryLevel(mastery),
			Attempts:   len(k.histories[user][topic]),
		}
	}
	return out
}

func masteryLevel(mastery float64) string {
	switch {
	case mastery >= 0.8:
		return "Expert"
	case mastery >= 0.6:
		return "Advanced"
	case mastery >= 0.4:
		return "Intermediate"
	case mastery >= 0.2:
		return "Beginner"
	default:
		return "Novice"
	}
}

// ConsistencyScore summarizes how stable a user's performance is across
// topics with at least three samples; 0.5 when there is not enough data.
func (k *KnowledgeTracker) ConsistencyScore(user string) float64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	var variances []float64
	for _, history := range k.histories[user] {
		if len(history) >= 3 {
			variances = append(variances, variance(history))
		}
	}
	if len(variances) == 0 {
		return defaultConsistency
	}
	var avg float64
	for _, v := range variances {
		avg += v
	}
	avg /= float64(len(variances))
	return 1.0 / (1.0 + avg)
}

// Snapshot returns a copy of the user's histories for persistence.
func (k *KnowledgeTracker) Snapshot(user string) map[string][]float64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make(map[string][]float64, len(k.histories[user]))
	for topic, history := range k.histories[user] {
		out[topic] = append([]float64(nil), history...)
	}
	return out
}

// Restore merges persisted histories for a user, truncating anything over
// the bound to the most recent entries.
func (k *KnowledgeTracker) Restore(user string, snapshot map[string][]float64) {
	if len(snapshot) == 0 {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	topics, ok := k.histories[user]
	if !ok {
		topics = make(map[string][]float64)
		k.histories[user] = topics
	}
	for topic, history := range snapshot {
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		clamped := make([]float64, len(history))
		for i, v := range history {
			clamped[i] = clamp01(v)
		}
		topics[topic] = clamped
	}
}
