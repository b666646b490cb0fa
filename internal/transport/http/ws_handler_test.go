package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"skillbuilder-assessment/internal/app"
	"skillbuilder-assessment/internal/domain"
	"skillbuilder-assessment/internal/infra/memory"
)

func TestWebSocketAssessmentFlow(t *testing.T) {
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewAssessmentService(quizRepo, memory.NewSessionStore(), memory.NewStateStore(), app.Components{})
	wsHandler := NewWSHandler(service, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1&quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msgType, payload := readNext(conn, t, "started")
	if msgType != "started" {
		t.Fatalf("expected started, got %s", msgType)
	}
	question, ok := payload["question"].(map[string]any)
	if !ok {
		t.Fatalf("started payload missing question: %v", payload)
	}
	if _, leaked := question["correctAnswer"].(string); leaked && question["correctAnswer"] != "" {
		t.Fatalf("correct answer leaked in started payload: %v", question)
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId":     question["id"],
			"answer":         "HAVING",
			"elapsedSeconds": 12.5,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	feedbackSeen := false
	reportSeen := false
	for i := 0; i < 3; i++ {
		typ, body := readNext(conn, t, "")
		switch typ {
		case "feedback":
			feedbackSeen = true
			fb, ok := body["feedback"].(map[string]any)
			if !ok {
				t.Fatalf("feedback payload malformed: %v", body)
			}
			if correct, _ := fb["correct"].(bool); !correct {
				t.Fatalf("expected correct MCQ answer, got %v", fb)
			}
		case "report":
			reportSeen = true
		}
		if feedbackSeen && reportSeen {
			break
		}
	}
	if !feedbackSeen || !reportSeen {
		t.Fatalf("expected feedback and report, got feedback=%v report=%v", feedbackSeen, reportSeen)
	}
}

func TestWebSocketMissingParams(t *testing.T) {
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewAssessmentService(quizRepo, memory.NewSessionStore(), memory.NewStateStore(), app.Components{})
	wsHandler := NewWSHandler(service, nil)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?quizId=quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "SQL Basics",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Text:          "Which SQL clause filters rows after aggregation?",
					Options:       []string{"WHERE", "HAVING", "GROUP BY", "ORDER BY"},
					CorrectAnswer: "HAVING",
					Difficulty:    0.4,
				},
			},
		},
	}
}
