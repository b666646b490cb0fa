package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Question is the canonical question record. Upstream stores keep loosely
// shaped documents (snake_case and camelCase key variants); those are
// normalized here, at the boundary, so nothing past this package branches
// on alternate spellings.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Difficulty    float64  `json:"difficulty"`
	Topics        []string `json:"topics"`
	QuizID        string   `json:"quizId,omitempty"`
}

// IsMultipleChoice reports whether the question carries fixed options.
func (q Question) IsMultipleChoice() bool {
	return len(q.Options) > 0
}

// Public returns a copy safe to send to clients (no correct answer).
func (q Question) Public() Question {
	out := q
	out.CorrectAnswer = ""
	return out
}

// rawQuestion accepts the alternate key spellings found in stored quiz
// documents.
type rawQuestion struct {
	ID             string   `json:"id"`
	QuestionID     string   `json:"question_id"`
	Text           string   `json:"text"`
	QuestionText   string   `json:"question_text"`
	QuestionTextCC string   `json:"questionText"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correct_answer"`
	CorrectAnsCC   string   `json:"correctAnswer"`
	Difficulty     *float64 `json:"difficulty"`
	Topics         []string `json:"topics"`
	QuizID         string   `json:"quizId"`
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = firstNonEmpty(raw.ID, raw.QuestionID)
	q.Text = firstNonEmpty(raw.Text, raw.QuestionText, raw.QuestionTextCC)
	q.Options = raw.Options
	q.CorrectAnswer = firstNonEmpty(raw.CorrectAnswer, raw.CorrectAnsCC)
	if raw.Difficulty != nil {
		q.Difficulty = *raw.Difficulty
	} else {
		q.Difficulty = 0.5
	}
	q.Topics = raw.Topics
	q.QuizID = raw.QuizID
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Quiz is a loaded set of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Attempt records a single scored submission. Attempts are append-only:
// once written to a session's log they are never mutated.
type Attempt struct {
	QuestionID   string    `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Answer       string    `json:"answer"`
	Elapsed      float64   `json:"elapsedSeconds"`
	Similarity   float64   `json:"similarity"`
	FinalScore   float64   `json:"finalScore"`
	Marks        float64   `json:"marks"`
	PolicyID     int       `json:"policyId"`
	Policy       string    `json:"policy"`
	Explanation  string    `json:"explanation"`
	Difficulty   float64   `json:"difficulty"`
	Topics       []string  `json:"topics"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Feedback is the per-answer result returned to clients.
type Feedback struct {
	QuestionID  string  `json:"questionId"`
	Similarity  float64 `json:"similarity"`
	FinalScore  float64 `json:"finalScore"`
	Marks       float64 `json:"marks"`
	Correct     bool    `json:"correct"`
	Explanation string  `json:"explanation"`
	PolicyID    int     `json:"policyId"`
	Policy      string  `json:"policy"`
}

// BanditState is the flat, JSON-serializable snapshot of the adaptive
// scoring selector.
type BanditState struct {
	ArmCounts  []float64 `json:"arm_counts"`
	ArmRewards []float64 `json:"arm_rewards"`
	Epsilon    float64   `json:"epsilon"`
}

// KnowledgeSnapshot maps topic name to the bounded performance history for
// one user.
type KnowledgeSnapshot map[string][]float64
