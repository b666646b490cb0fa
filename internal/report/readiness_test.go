package report

import (
	"math"
	"testing"
)

func TestReadinessAccuracyFloor(t *testing.T) {
	got := Readiness(ReadinessInput{Accuracy: 0.55})
	if got.Score < 60 {
		t.Fatalf("passing accuracy scored %v, want >= 60", got.Score)
	}

	got = Readiness(ReadinessInput{Accuracy: 0.85})
	if got.Score < 75 {
		t.Fatalf("strong accuracy scored %v, want >= 75", got.Score)
	}
}

func TestReadinessLevels(t *testing.T) {
	cases := []struct {
		in    ReadinessInput
		level string
	}{
		{ReadinessInput{Accuracy: 0.95, Consistency: 0.95, TimeEfficiency: 0.9}, "Expert Level"},
		{ReadinessInput{Accuracy: 0.3, Consistency: 0.5, TimeEfficiency: 0.5}, "Needs Foundation"},
	}
	for _, c := range cases {
		got := Readiness(c.in)
		if got.Level != c.level {
			t.Fatalf("input %+v level %q, want %q (score %v)", c.in, got.Level, c.level, got.Score)
		}
	}
}

func TestReadinessBonusAndPenaltyApplied(t *testing.T) {
	base := Readiness(ReadinessInput{Accuracy: 0.55, Consistency: 0.8, TimeEfficiency: 0.8})
	boosted := Readiness(ReadinessInput{Accuracy: 0.55, Consistency: 0.8, TimeEfficiency: 0.8, StrongTopicBonus: 0.1})
	penalized := Readiness(ReadinessInput{Accuracy: 0.55, Consistency: 0.8, TimeEfficiency: 0.8, WeakTopicPenalty: 0.1})

	if boosted.Score <= base.Score {
		t.Fatalf("bonus did not raise score: %v vs %v", boosted.Score, base.Score)
	}
	if penalized.Score >= base.Score {
		t.Fatalf("penalty did not lower score: %v vs %v", penalized.Score, base.Score)
	}
}

func TestReadinessScoreInRange(t *testing.T) {
	got := Readiness(ReadinessInput{Accuracy: 1.0, Consistency: 1.0, TimeEfficiency: 1.0, StrongTopicBonus: 0.15})
	if got.Score > 100 {
		t.Fatalf("score %v above 100", got.Score)
	}
	got = Readiness(ReadinessInput{WeakTopicPenalty: 0.15})
	if got.Score < 0 {
		t.Fatalf("score %v below 0", got.Score)
	}
}

func TestWeakTopicPenaltyCapped(t *testing.T) {
	weak := []string{"DBMS", "Python", "Java", "C++", "SQL"}
	mastery := map[string]float64{}
	got := WeakTopicPenalty(weak, mastery)
	if got != 0.15 {
		t.Fatalf("penalty %v, want cap 0.15", got)
	}
	if got := WeakTopicPenalty(nil, mastery); got != 0 {
		t.Fatalf("no weak topics penalty %v, want 0", got)
	}
}

func TestStrongTopicBonus(t *testing.T) {
	strong := []string{"Python", "SQL"}
	mastery := map[string]float64{"Python": 0.9, "SQL": 0.8}
	got := StrongTopicBonus(strong, mastery)
	// Average over-threshold strength 0.15, scaled by 2/10.
	if math.Abs(got-0.03) > 1e-9 {
		t.Fatalf("bonus %v, want 0.03", got)
	}
	if got := StrongTopicBonus(nil, mastery); got != 0 {
		t.Fatalf("no strong topics bonus %v, want 0", got)
	}
}
