package app

import (
	"sync"
	"time"

	"skillbuilder-assessment/internal/domain"
	"skillbuilder-assessment/internal/scoring"
)

// Session tracks one user's pass through a shuffled question list. A
// session is logically owned by one in-flight request at a time; the mutex
// serializes submissions that arrive concurrently anyway.
type Session struct {
	id        string
	userID    string
	quizID    string
	quizTitle string
	questions []domain.Question
	createdAt time.Time
	now       func() time.Time

	mu       sync.Mutex
	attempts []domain.Attempt
	cursor   int
	finished bool
	ramp     *scoring.DifficultyRamp
}

// NewSession builds a session positioned at the first question.
func NewSession(id, userID, quizID, quizTitle string, questions []domain.Question) *Session {
	return newSessionWithClock(id, userID, quizID, quizTitle, questions, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id, userID, quizID, quizTitle string, questions []domain.Question, now func() time.Time) *Session {
	return &Session{
		id:        id,
		userID:    userID,
		quizID:    quizID,
		quizTitle: quizTitle,
		questions: questions,
		createdAt: now(),
		now:       now,
		ramp:      scoring.NewDifficultyRamp(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user.
func (s *Session) UserID() string { return s.userID }

func (s *Session) currentQuestionLocked() (domain.Question, error) {
	if s.finished || s.cursor >= len(s.questions) {
		return domain.Question{}, domain.ErrSessionFinished
	}
	return s.questions[s.cursor], nil
}

// recordAttemptLocked appends the attempt and advances the cursor. The
// attempt log can never exceed the question count because the cursor is
// checked before scoring.
func (s *Session) recordAttemptLocked(attempt domain.Attempt, correct bool) {
	s.attempts = append(s.attempts, attempt)
	s.cursor++
	s.ramp.Update(correct, attempt.Elapsed)
	if s.cursor >= len(s.questions) {
		s.finished = true
	}
}

// averageScoreLocked is the session-so-far mean final score, defaulting to
// 0.5 before any attempt so early answers see a neutral prior.
func (s *Session) averageScoreLocked() float64 {
	if len(s.attempts) == 0 {
		return 0.5
	}
	var sum float64
	for _, a := range s.attempts {
		sum += a.FinalScore
	}
	return sum / float64(len(s.attempts))
}

func (s *Session) topicsCoveredLocked() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range s.attempts {
		for _, topic := range a.Topics {
			if _, ok := seen[topic]; !ok {
				seen[topic] = struct{}{}
				out = append(out, topic)
			}
		}
	}
	return out
}
