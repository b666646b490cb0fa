package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"skillbuilder-assessment/internal/app"
)

// WSHandler runs one assessment session per websocket connection.
type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewWSHandler(service *app.AssessmentService, log *logrus.Logger) *WSHandler {
	if log == nil {
		log = logrus.New()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID     string  `json:"questionId"`
	Answer         string  `json:"answer"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a session, and grades answers until
// the question list is exhausted or the client asks to finish. All writes go
// through one goroutine so the connection never sees concurrent writers.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	quizID := r.URL.Query().Get("quizId")
	title := r.URL.Query().Get("title")
	if userID == "" || quizID == "" {
		http.Error(w, "missing userId or quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	started, err := h.service.StartQuiz(r.Context(), userID, quizID, title)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: started}

	sessionID := started.SessionID
	done := false
	for !done {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.service.SubmitAnswer(r.Context(), sessionID, payload.QuestionID, payload.Answer, payload.ElapsedSeconds)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "feedback", Payload: result}
			if result.Done {
				send <- outboundMessage[any]{Type: "report", Payload: result.Report}
				done = true
			}
		case "finish":
			report, err := h.service.FinishQuiz(r.Context(), sessionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "report", Payload: report}
			done = true
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone

	// Drop the session if the client vanished mid-quiz.
	if !done {
		_, _ = h.service.FinishQuiz(r.Context(), sessionID)
	}
}
