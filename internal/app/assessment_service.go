// Package app wires the scoring engine into session workflows: starting a
// quiz, grading submitted answers, and assembling the final candidate
// report.
package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skillbuilder-assessment/internal/domain"
	"skillbuilder-assessment/internal/report"
	"skillbuilder-assessment/internal/scoring"
)

const (
	correctThreshold = 0.6
	marksPerQuestion = 10.0

	// Fast-answer bonus for descriptive questions: up to 0.05 inside the
	// first minute, and only when the answer is already in the right area.
	bonusWindowSeconds = 60.0
	bonusMagnitude     = 0.05
	bonusSimilarityMin = 0.4

	knowledgeTimeScale = 120.0
)

// QuizRepository loads quiz definitions.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SessionRepository holds live sessions between websocket messages.
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// StateStore persists adaptive state across restarts. All methods are
// best-effort from the caller's point of view; grading never blocks on
// persistence failures.
type StateStore interface {
	SaveBanditState(ctx context.Context, state domain.BanditState) error
	LoadBanditState(ctx context.Context) (domain.BanditState, bool, error)
	SaveKnowledge(ctx context.Context, userID string, snapshot domain.KnowledgeSnapshot) error
	LoadKnowledge(ctx context.Context, userID string) (domain.KnowledgeSnapshot, bool, error)
}

// Components are the scoring collaborators. Zero-valued fields are replaced
// with production defaults; tests inject deterministic substitutes.
type Components struct {
	Scorer       *scoring.Scorer
	Tagger       *scoring.TopicTagger
	Tracker      *scoring.KnowledgeTracker
	Bandit       *scoring.BanditSelector
	Orchestrator *scoring.Orchestrator
	Logger       *logrus.Logger
}

// AssessmentService runs quiz sessions end to end.
type AssessmentService struct {
	quizzes  QuizRepository
	sessions SessionRepository
	states   StateStore // nil disables persistence

	scorer       *scoring.Scorer
	tagger       *scoring.TopicTagger
	tracker      *scoring.KnowledgeTracker
	bandit       *scoring.BanditSelector
	orchestrator *scoring.Orchestrator
	log          *logrus.Logger
}

func NewAssessmentService(quizzes QuizRepository, sessions SessionRepository, states StateStore, comps Components) *AssessmentService {
	if comps.Scorer == nil {
		comps.Scorer = scoring.NewScorer(nil)
	}
	if comps.Tagger == nil {
		comps.Tagger = scoring.NewTopicTagger()
	}
	if comps.Tracker == nil {
		comps.Tracker = scoring.NewKnowledgeTracker()
	}
	if comps.Bandit == nil {
		comps.Bandit = scoring.NewBanditSelector()
	}
	if comps.Orchestrator == nil {
		comps.Orchestrator = scoring.NewOrchestrator()
	}
	if comps.Logger == nil {
		comps.Logger = logrus.New()
	}
	return &AssessmentService{
		quizzes:      quizzes,
		sessions:     sessions,
		states:       states,
		scorer:       comps.Scorer,
		tagger:       comps.Tagger,
		tracker:      comps.Tracker,
		bandit:       comps.Bandit,
		orchestrator: comps.Orchestrator,
		log:          comps.Logger,
	}
}

// RestoreBanditState loads persisted policy counters, typically once at
// startup. Missing state is not an error.
func (s *AssessmentService) RestoreBanditState(ctx context.Context) error {
	if s.states == nil {
		return nil
	}
	state, ok, err := s.states.LoadBanditState(ctx)
	if err != nil {
		return fmt.Errorf("load bandit state: %w", err)
	}
	if !ok {
		return nil
	}
	return s.bandit.RestoreState(state)
}

// BanditStatistics exposes the current policy counters.
func (s *AssessmentService) BanditStatistics() scoring.BanditStatistics {
	return s.bandit.Statistics()
}

// SessionStart is the reply to a successful StartQuiz.
type SessionStart struct {
	SessionID      string          `json:"sessionId"`
	QuizID         string          `json:"quizId"`
	QuizTitle      string          `json:"quizTitle"`
	TotalQuestions int             `json:"totalQuestions"`
	Question       domain.Question `json:"question"`
	QuestionNumber int             `json:"questionNumber"`
}

// StartQuiz loads the quiz, tags untitled questions, shuffles with the
// user's daily ordering, and opens a session positioned at the first
// question.
func (s *AssessmentService) StartQuiz(ctx context.Context, userID, quizID, title string) (SessionStart, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return SessionStart{}, err
	}
	if title == "" {
		title = quiz.Title
	}

	if s.states != nil {
		snapshot, ok, err := s.states.LoadKnowledge(ctx, userID)
		if err != nil {
			s.log.WithError(err).WithField("user", userID).Warn("knowledge restore failed, starting cold")
		} else if ok {
			s.tracker.Restore(userID, snapshot)
		}
	}

	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	for i := range questions {
		if len(questions[i].Topics) == 0 {
			questions[i].Topics = s.tagger.Extract(questions[i].Text, title)
		}
	}

	selected := s.orchestrator.Shuffle(questions, userID)
	if len(selected) == 0 {
		return SessionStart{}, fmt.Errorf("quiz %q has no questions: %w", quizID, domain.ErrQuizNotFound)
	}

	session := NewSession(uuid.NewString(), userID, quizID, title, selected)
	s.sessions.Put(session)

	s.log.WithFields(logrus.Fields{
		"session":   session.id,
		"user":      userID,
		"quiz":      quizID,
		"questions": len(selected),
	}).Info("session started")

	return SessionStart{
		SessionID:      session.id,
		QuizID:         quizID,
		QuizTitle:      title,
		TotalQuestions: len(selected),
		Question:       selected[0].Public(),
		QuestionNumber: 1,
	}, nil
}

// SubmitResult carries grading feedback plus either the next question or
// the final report once the list is exhausted.
type SubmitResult struct {
	Feedback       domain.Feedback  `json:"feedback"`
	Done           bool             `json:"done"`
	Question       *domain.Question `json:"question,omitempty"`
	QuestionNumber int              `json:"questionNumber,omitempty"`
	Report         *Report          `json:"report,omitempty"`
}

// SubmitAnswer grades the answer to the session's current question.
// Multiple-choice questions are matched exactly and score 0 or 1; everything
// else goes through similarity scoring and the adaptive policy layer.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID, questionID, answer string, elapsed float64) (SubmitResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SubmitResult{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	question, err := session.currentQuestionLocked()
	if err != nil {
		return SubmitResult{}, err
	}
	if questionID != "" && questionID != question.ID {
		// Grade against the current question anyway: clients that lag a
		// message behind should not wedge the session.
		s.log.WithFields(logrus.Fields{
			"session":  sessionID,
			"expected": question.ID,
			"got":      questionID,
		}).Warn("answer for unexpected question")
	}
	if elapsed < 0 {
		elapsed = 0
	}

	var (
		similarity  float64
		final       float64
		policyID    = -1
		policy      = "exact-match"
		explanation string
	)

	if question.IsMultipleChoice() {
		if matchMultipleChoice(answer, question) {
			similarity, final = 1.0, 1.0
			explanation = "Correct!"
		} else {
			explanation = fmt.Sprintf("The correct answer is: %s", question.CorrectAnswer)
		}
	} else {
		similarity = s.scorer.Score(answer, question.CorrectAnswer, question.Text)

		var timeBonus float64
		if elapsed < bonusWindowSeconds && similarity > bonusSimilarityMin {
			timeBonus = bonusMagnitude * (1 - elapsed/bonusWindowSeconds)
		}

		primaryTopic := "General"
		if len(question.Topics) > 0 {
			primaryTopic = question.Topics[0]
		}
		mastery, _ := s.tracker.Mastery(session.userID, primaryTopic)
		prevPerformance := session.averageScoreLocked()

		final, policyID, policy = s.bandit.Score(similarity, question.Difficulty, elapsed, mastery, prevPerformance, timeBonus)
		s.bandit.UpdateReward(policyID, final)
		explanation = s.scorer.Explain(answer, question.CorrectAnswer, question.Text)
	}

	timeEfficiency := clampUnit(1 - elapsed/knowledgeTimeScale)
	for _, topic := range question.Topics {
		s.tracker.Update(session.userID, topic, similarity, question.Difficulty, elapsed, timeEfficiency)
	}

	correct := final >= correctThreshold
	attempt := domain.Attempt{
		QuestionID:   question.ID,
		QuestionText: question.Text,
		Answer:       answer,
		Elapsed:      elapsed,
		Similarity:   similarity,
		FinalScore:   final,
		Marks:        final * marksPerQuestion,
		PolicyID:     policyID,
		Policy:       policy,
		Explanation:  explanation,
		Difficulty:   question.Difficulty,
		Topics:       question.Topics,
		SubmittedAt:  session.now(),
	}
	session.recordAttemptLocked(attempt, correct)

	s.persistState(ctx, session.userID)

	result := SubmitResult{
		Feedback: domain.Feedback{
			QuestionID:  question.ID,
			Similarity:  similarity,
			FinalScore:  final,
			Marks:       attempt.Marks,
			Correct:     correct,
			Explanation: explanation,
			PolicyID:    policyID,
			Policy:      policy,
		},
	}

	if next, err := session.currentQuestionLocked(); err == nil {
		public := next.Public()
		result.Question = &public
		result.QuestionNumber = session.cursor + 1
		return result, nil
	}

	result.Done = true
	result.Report = s.buildReportLocked(session)
	s.sessions.Delete(session.id)
	s.log.WithFields(logrus.Fields{
		"session": session.id,
		"user":    session.userID,
		"score":   result.Report.Percentage,
	}).Info("session finished")
	return result, nil
}

// FinishQuiz ends a session early and returns the report over whatever was
// attempted.
func (s *AssessmentService) FinishQuiz(ctx context.Context, sessionID string) (*Report, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.finished = true
	rep := s.buildReportLocked(session)
	s.sessions.Delete(session.id)
	s.persistState(ctx, session.userID)
	return rep, nil
}

func (s *AssessmentService) persistState(ctx context.Context, userID string) {
	if s.states == nil {
		return
	}
	if err := s.states.SaveBanditState(ctx, s.bandit.SaveState()); err != nil {
		s.log.WithError(err).Warn("bandit state save failed")
	}
	if err := s.states.SaveKnowledge(ctx, userID, s.tracker.Snapshot(userID)); err != nil {
		s.log.WithError(err).WithField("user", userID).Warn("knowledge save failed")
	}
}

// matchMultipleChoice accepts the exact answer text, an option letter (A-D),
// or a 1-based option index.
func matchMultipleChoice(answer string, q domain.Question) bool {
	user := strings.ToLower(strings.TrimSpace(answer))
	correct := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	if user == "" {
		return false
	}
	if user == correct {
		return true
	}

	idx := -1
	if len(user) == 1 && user[0] >= 'a' && user[0] <= 'z' {
		idx = int(user[0] - 'a')
	} else if n, err := strconv.Atoi(user); err == nil {
		idx = n - 1
	}
	if idx >= 0 && idx < len(q.Options) {
		return strings.ToLower(strings.TrimSpace(q.Options[idx])) == correct
	}
	return false
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Report is the end-of-session candidate assessment.
type Report struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	QuizTitle   string    `json:"quizTitle"`
	GeneratedAt time.Time `json:"generatedAt"`

	TotalQuestions int     `json:"totalQuestions"`
	Attempted      int     `json:"attempted"`
	TotalMarks     float64 `json:"totalMarks"`
	MaxMarks       float64 `json:"maxMarks"`
	Percentage     float64 `json:"percentage"`

	Accuracy       float64  `json:"accuracy"`
	TopicCoverage  float64  `json:"topicCoverage"`
	TimeEfficiency float64  `json:"timeEfficiency"`
	Consistency    float64  `json:"consistency"`
	TopicDepth     float64  `json:"topicDepth"`
	TopicsCovered  []string `json:"topicsCovered"`
	WeakTopics     []string `json:"weakTopics"`
	StrongTopics   []string `json:"strongTopics"`

	TopicMastery map[string]scoring.TopicMastery `json:"topicMastery"`

	Readiness report.ReadinessResult    `json:"jobReadiness"`
	Role      report.RoleRecommendation `json:"roleRecommendation"`
	Salary    report.SalaryEstimate     `json:"salaryEstimate"`

	Attempts []domain.Attempt `json:"attempts"`
}

func (s *AssessmentService) buildReportLocked(session *Session) *Report {
	attempts := session.attempts
	user := session.userID

	var totalMarks, accuracySum, efficiencySum, difficultySum float64
	for _, a := range attempts {
		totalMarks += a.Marks
		accuracySum += a.FinalScore
		efficiencySum += clampUnit(1 - a.Elapsed/knowledgeTimeScale)
		difficultySum += a.Difficulty
	}

	attempted := len(attempts)
	accuracy, efficiency, avgDifficulty := 0.0, 0.0, 0.5
	if attempted > 0 {
		accuracy = accuracySum / float64(attempted)
		efficiency = efficiencySum / float64(attempted)
		avgDifficulty = difficultySum / float64(attempted)
	}

	covered := session.topicsCoveredLocked()
	coverage := float64(len(covered)) / float64(len(scoring.TopicNames))

	allMastery := s.tracker.AllMastery(user)
	masteryValues := make(map[string]float64, len(allMastery))
	for topic, m := range allMastery {
		masteryValues[topic] = m.Mastery
	}

	topicDepth := 0.5
	if len(covered) > 0 {
		var sum float64
		for _, topic := range covered {
			sum += masteryValues[topic]
		}
		topicDepth = sum / float64(len(covered))
	}

	consistency := s.tracker.ConsistencyScore(user)
	weak := s.tracker.WeakTopics(user, 0)
	strong := s.tracker.StrongTopics(user, 0)
	penalty := report.WeakTopicPenalty(weak, masteryValues)
	bonus := report.StrongTopicBonus(strong, masteryValues)

	readiness := report.Readiness(report.ReadinessInput{
		Accuracy:         accuracy,
		TopicCoverage:    coverage,
		AvgDifficulty:    avgDifficulty,
		Consistency:      consistency,
		TimeEfficiency:   efficiency,
		TopicDepth:       topicDepth,
		WeakTopicPenalty: penalty,
		StrongTopicBonus: bonus,
	})
	role := report.RecommendRole(masteryValues)
	salary := report.EstimateSalary(report.SalaryInput{
		JobReadiness:    readiness.Score,
		Role:            role.Role,
		TopicDepth:      topicDepth,
		Consistency:     consistency,
		QuizComplexity:  session.ramp.Current(),
		ExperienceYears: 1.0,
		CompanyType:     "mid_size",
		City:            "tier1",
	})

	maxMarks := float64(len(session.questions)) * marksPerQuestion
	percentage := 0.0
	if maxMarks > 0 {
		percentage = totalMarks / maxMarks * 100
	}

	return &Report{
		SessionID:      session.id,
		UserID:         user,
		QuizID:         session.quizID,
		QuizTitle:      session.quizTitle,
		GeneratedAt:    session.now(),
		TotalQuestions: len(session.questions),
		Attempted:      attempted,
		TotalMarks:     totalMarks,
		MaxMarks:       maxMarks,
		Percentage:     percentage,
		Accuracy:       accuracy,
		TopicCoverage:  coverage,
		TimeEfficiency: efficiency,
		Consistency:    consistency,
		TopicDepth:     topicDepth,
		TopicsCovered:  covered,
		WeakTopics:     weak,
		StrongTopics:   strong,
		TopicMastery:   allMastery,
		Readiness:      readiness,
		Role:           role,
		Salary:         salary,
		Attempts:       attempts,
	}
}
