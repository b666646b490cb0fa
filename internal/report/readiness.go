// Package report turns finalized session statistics into a candidate
// assessment: job readiness, role recommendation, and salary estimate. All
// functions are pure; the tables are business data, not algorithm.
package report

import "math"

// ReadinessInput aggregates a finished session. All fields are in [0,1].
type ReadinessInput struct {
	Accuracy         float64
	TopicCoverage    float64
	AvgDifficulty    float64
	Consistency      float64
	TimeEfficiency   float64
	TopicDepth       float64
	WeakTopicPenalty float64
	StrongTopicBonus float64
}

// ScoreBreakdown shows the weighted contribution of each factor on the
// 0-100 scale.
type ScoreBreakdown struct {
	Accuracy    float64 `json:"accuracy_contrib"`
	Coverage    float64 `json:"coverage_contrib"`
	Consistency float64 `json:"consistency_contrib"`
	Efficiency  float64 `json:"efficiency_contrib"`
	Interaction float64 `json:"interaction_contrib"`
}

// Interpretation is the human-readable read on a readiness score.
type Interpretation struct {
	Message  string   `json:"message"`
	Actions  []string `json:"actions"`
	Timeline string   `json:"timeline"`
}

// ReadinessResult is the full readiness assessment.
type ReadinessResult struct {
	Score             float64        `json:"readiness_score"`
	Level             string         `json:"readiness_level"`
	BenchmarkTarget   int            `json:"benchmark_target"`
	ImprovementNeeded float64        `json:"improvement_needed"`
	StrongTopicBonus  float64        `json:"strong_topic_bonus"`
	WeakTopicPenalty  float64        `json:"weak_topic_penalty"`
	Breakdown         ScoreBreakdown `json:"score_breakdown"`
	Interpretation    Interpretation `json:"interpretation"`
}

// Industry benchmarks by role seniority, on the 0-100 readiness scale.
var roleBenchmarks = map[string]int{
	"entry_level": 60,
	"mid_level":   75,
	"senior":      85,
	"expert":      92,
}

// Readiness converts aggregated performance into a 0-100 readiness score
// with level, benchmark gap, breakdown, and interpretation.
func Readiness(in ReadinessInput) ReadinessResult {
	// Accuracy dominates; consistency and pace refine it.
	score := in.Accuracy*0.7 + in.Consistency*0.2 + in.TimeEfficiency*0.1

	// Encouragement floors: passing-level accuracy guarantees at least an
	// internship-ready reading, strong accuracy at least junior level.
	if in.Accuracy > 0.5 {
		score = math.Max(score, 0.60)
	}
	if in.Accuracy > 0.8 {
		score = math.Max(score, 0.75)
	}

	score = score + in.StrongTopicBonus - in.WeakTopicPenalty
	score = math.Max(0, math.Min(1, score))

	readiness := round1(score * 100)
	level, benchmark := readinessLevel(readiness)

	return ReadinessResult{
		Score:             readiness,
		Level:             level,
		BenchmarkTarget:   benchmark,
		ImprovementNeeded: round1(math.Max(0, float64(benchmark)-readiness)),
		StrongTopicBonus:  round1(in.StrongTopicBonus * 100),
		WeakTopicPenalty:  round1(in.WeakTopicPenalty * 100),
		Breakdown: ScoreBreakdown{
			Accuracy:    round1(in.Accuracy * 25),
			Coverage:    round1(in.TopicCoverage * 20),
			Consistency: round1(in.Consistency * 30),
			Efficiency:  round1(in.TimeEfficiency * 15),
			Interaction: round1(in.Accuracy * in.Consistency * 10),
		},
		Interpretation: interpret(readiness),
	}
}

func readinessLevel(score float64) (string, int) {
	switch {
	case score >= 90:
		return "Expert Level", roleBenchmarks["expert"]
	case score >= 80:
		return "Senior Level", roleBenchmarks["senior"]
	case score >= 70:
		return "Mid Level", roleBenchmarks["mid_level"]
	case score >= 60:
		return "Entry Level", roleBenchmarks["entry_level"]
	case score >= 40:
		return "Internship Ready", 60
	default:
		return "Needs Foundation", 40
	}
}

func interpret(score float64) Interpretation {
	switch {
	case score >= 90:
		return Interpretation{
			Message:  "Excellent! You're ready for senior/lead positions",
			Actions:  []string{"Apply for senior roles", "Consider mentorship opportunities"},
			Timeline: "Immediately",
		}
	case score >= 80:
		return Interpretation{
			Message:  "Strong candidate for mid-senior roles",
			Actions:  []string{"Polish interview skills", "Build portfolio projects"},
			Timeline: "1-2 months",
		}
	case score >= 70:
		return Interpretation{
			Message:  "Ready for entry-mid level positions",
			Actions:  []string{"Practice system design", "Learn one advanced topic"},
			Timeline: "2-3 months",
		}
	case score >= 60:
		return Interpretation{
			Message:  "Ready for entry-level/junior positions",
			Actions:  []string{"Complete foundational courses", "Build basic projects"},
			Timeline: "3-6 months",
		}
	default:
		return Interpretation{
			Message:  "Focus on building strong foundations",
			Actions:  []string{"Master basics", "Complete beginner tutorials"},
			Timeline: "6-12 months",
		}
	}
}

// WeakTopicPenalty derives the readiness penalty from weak topics and their
// mastery values, capped at 15%.
func WeakTopicPenalty(weakTopics []string, mastery map[string]float64) float64 {
	if len(weakTopics) == 0 {
		return 0
	}
	var sum float64
	for _, topic := range weakTopics {
		m, ok := mastery[topic]
		if !ok {
			m = 0.5
		}
		sum += 1.0 - m
	}
	avgWeakness := sum / float64(len(weakTopics))
	penalty := avgWeakness * (float64(len(weakTopics)) / 10)
	return math.Min(0.15, penalty)
}

// StrongTopicBonus derives the readiness bonus from strong topics above the
// 0.7 mastery threshold, capped at 15%.
func StrongTopicBonus(strongTopics []string, mastery map[string]float64) float64 {
	if len(strongTopics) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, topic := range strongTopics {
		m, ok := mastery[topic]
		if !ok {
			m = 0.5
		}
		if s := m - 0.7; s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	bonus := (sum / float64(n)) * (float64(len(strongTopics)) / 10)
	return math.Min(0.15, bonus)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
