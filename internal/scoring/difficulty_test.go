package scoring

import (
	"math"
	"testing"
)

func TestDifficultyRampSteps(t *testing.T) {
	ramp := NewDifficultyRamp()
	if got := ramp.Current(); got != 0.5 {
		t.Fatalf("starting difficulty %v, want 0.5", got)
	}

	if got := ramp.Update(true, 30); math.Abs(got-0.55) > 1e-9 {
		t.Fatalf("correct answer moved to %v, want 0.55", got)
	}
	if got := ramp.Update(true, 5); math.Abs(got-0.62) > 1e-9 {
		t.Fatalf("fast correct answer moved to %v, want 0.62", got)
	}
	if got := ramp.Update(false, 30); math.Abs(got-0.57) > 1e-9 {
		t.Fatalf("wrong answer moved to %v, want 0.57", got)
	}
}

func TestDifficultyRampClamps(t *testing.T) {
	ramp := NewDifficultyRamp()
	for i := 0; i < 20; i++ {
		ramp.Update(false, 30)
	}
	if got := ramp.Current(); got != 0.1 {
		t.Fatalf("floor %v, want 0.1", got)
	}

	for i := 0; i < 30; i++ {
		ramp.Update(true, 5)
	}
	if got := ramp.Current(); got != 1.0 {
		t.Fatalf("ceiling %v, want 1.0", got)
	}
}

func TestDifficultyRampAverage(t *testing.T) {
	ramp := NewDifficultyRamp()
	if got := ramp.Average(); got != 0.5 {
		t.Fatalf("empty average %v, want starting 0.5", got)
	}
	ramp.Update(true, 30)  // 0.55
	ramp.Update(false, 30) // 0.50
	if got := ramp.Average(); math.Abs(got-0.525) > 1e-9 {
		t.Fatalf("average %v, want 0.525", got)
	}
}
