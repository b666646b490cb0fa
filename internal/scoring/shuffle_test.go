package scoring

import (
	"fmt"
	"math"
	"testing"
	"time"

	"skillbuilder-assessment/internal/domain"
)

func fixedClock() func() time.Time {
	day := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return day }
}

func questionList(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{ID: fmt.Sprintf("q%d", i)}
	}
	return out
}

func TestShuffleStableForUserAndDay(t *testing.T) {
	o := NewOrchestratorWithClock(fixedClock())
	questions := questionList(15)

	first := o.Shuffle(questions, "alice")
	second := o.Shuffle(questions, "alice")

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestShuffleDiffersAcrossUsers(t *testing.T) {
	o := NewOrchestratorWithClock(fixedClock())
	questions := questionList(15)

	base := o.Shuffle(questions, "alice")
	differs := false
	for _, user := range []string{"bob", "carol", "dave", "erin", "frank"} {
		other := o.Shuffle(questions, user)
		for i := range base {
			if base[i].ID != other[i].ID {
				differs = true
				break
			}
		}
		if differs {
			break
		}
	}
	if !differs {
		t.Fatalf("expected at least one user with a different ordering")
	}
}

func TestShuffleCapsAtTen(t *testing.T) {
	o := NewOrchestratorWithClock(fixedClock())
	got := o.Shuffle(questionList(15), "alice")
	if len(got) != 10 {
		t.Fatalf("selected %d questions, want 10", len(got))
	}

	got = o.Shuffle(questionList(4), "alice")
	if len(got) != 4 {
		t.Fatalf("short quiz selected %d, want all 4", len(got))
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	o := NewOrchestratorWithClock(fixedClock())
	questions := questionList(12)
	_ = o.Shuffle(questions, "alice")
	for i, q := range questions {
		if q.ID != fmt.Sprintf("q%d", i) {
			t.Fatalf("input slice mutated at %d: %s", i, q.ID)
		}
	}
}

func TestTimeBonus(t *testing.T) {
	if got := TimeBonus(0, 120); got != 0 {
		t.Fatalf("zero elapsed bonus %v, want 0", got)
	}
	if got := TimeBonus(-5, 120); got != 0 {
		t.Fatalf("negative elapsed bonus %v, want 0", got)
	}
	if got := TimeBonus(30, 120); math.Abs(got-0.075) > 1e-9 {
		t.Fatalf("bonus %v, want 0.075", got)
	}
	if got := TimeBonus(200, 120); got != 0 {
		t.Fatalf("overtime bonus %v, want 0", got)
	}
	// Zero budget falls back to the default.
	if got := TimeBonus(60, 0); math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("default budget bonus %v, want 0.05", got)
	}
}
