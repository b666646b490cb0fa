package domain

import (
	"encoding/json"
	"testing"
)

func TestQuestionUnmarshalAlternateKeys(t *testing.T) {
	raw := `{
		"question_id": "q7",
		"question_text": "What is a deadlock?",
		"correct_answer": "Two processes each waiting on a lock the other holds",
		"topics": ["OS"]
	}`
	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.ID != "q7" || q.Text != "What is a deadlock?" {
		t.Fatalf("alternate keys not mapped: %+v", q)
	}
	if q.CorrectAnswer == "" {
		t.Fatalf("correct_answer not mapped: %+v", q)
	}
	if q.Difficulty != 0.5 {
		t.Fatalf("missing difficulty defaulted to %v, want 0.5", q.Difficulty)
	}
}

func TestQuestionUnmarshalCamelCase(t *testing.T) {
	raw := `{
		"id": "q1",
		"questionText": "Pick one",
		"options": ["a", "b"],
		"correctAnswer": "b",
		"difficulty": 0.3
	}`
	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Text != "Pick one" || q.CorrectAnswer != "b" || q.Difficulty != 0.3 {
		t.Fatalf("camel case keys not mapped: %+v", q)
	}
	if !q.IsMultipleChoice() {
		t.Fatalf("question with options should be multiple choice")
	}
}

func TestQuestionPublicStripsAnswer(t *testing.T) {
	q := Question{ID: "q1", Text: "t", CorrectAnswer: "secret", Options: []string{"a", "secret"}}
	public := q.Public()
	if public.CorrectAnswer != "" {
		t.Fatalf("public view leaked the answer: %+v", public)
	}
	if q.CorrectAnswer != "secret" {
		t.Fatalf("original question mutated: %+v", q)
	}
}
