package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lingua-quiz-service/internal/app"
	"lingua-quiz-service/internal/domain"
	"lingua-quiz-service/internal/progress"
)

// WSHandler exposes quiz sessions over a websocket: the client starts a
// session by connecting, then drives it with answer/advance messages.
type WSHandler struct {
	engine   *app.Engine
	recorder *progress.Recorder
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, recorder *progress.Recorder, log *zap.Logger) *WSHandler {
	return &WSHandler{
		engine:   engine,
		recorder: recorder,
		log:      log,
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
	QuestionID string   `json:"questionId"`
	Answers    []string `json:"answers"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is the client-facing question shape; canonical answers
// never leave the server.
type questionView struct {
	ID      string              `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options []string            `json:"options,omitempty"`
	Points  int                 `json:"points"`
	Order   int                 `json:"order"`
}

type startedPayload struct {
	Session  domain.Session `json:"session"`
	Question questionView   `json:"question"`
}

type answerResultPayload struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
	Score      int    `json:"score"`
}

type completedPayload struct {
	Result        domain.Result `json:"result"`
	ProgressSaved bool          `json:"progressSaved"`
}

func viewOf(q domain.Question) questionView {
	return questionView{
		ID:      q.ID,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Options: q.Options,
		Points:  q.Points,
		Order:   q.Order,
	}
}

// ServeWS upgrades the request and runs one quiz session over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learnerId")
	quizID := r.URL.Query().Get("quizId")
	if learnerID == "" || quizID == "" {
		http.Error(w, "missing learnerId or quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session, err := h.engine.StartSession(r.Context(), learnerID, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.engine.Release(session.ID)

	first, err := h.engine.CurrentQuestion(r.Context(), session.ID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	completions, cancel, err := h.engine.Watch(session.ID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	watchDone := make(chan struct{})

	// Writer goroutine owns the connection for writes and drops a second
	// "completed" if both the advance path and the watcher produced one.
	go func() {
		defer close(writerDone)
		completedSent := false
		for msg := range send {
			if msg.Type == "completed" {
				if completedSent {
					continue
				}
				completedSent = true
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(watchDone)
		select {
		case completion, ok := <-completions:
			if !ok {
				return
			}
			select {
			case send <- completedMessage(completion):
			case <-closeSignals:
			}
		case <-closeSignals:
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{Session: session, Question: viewOf(first)}}

	for {
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
			answer, err := h.engine.SubmitAnswer(r.Context(), session.ID, payload.QuestionID, payload.Answers)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			snapshot, err := h.engine.Snapshot(r.Context(), session.ID)
			score := answer.Points
			if err == nil {
				score = snapshot.Score
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: answerResultPayload{
				QuestionID: answer.QuestionID,
				Correct:    answer.Correct,
				Points:     answer.Points,
				Score:      score,
			}}
		case "advance":
			advanced, err := h.engine.Advance(r.Context(), session.ID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if advanced.Completed {
				send <- completedMessage(*advanced.Completion)
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: viewOf(*advanced.Question)}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-watchDone
	close(send)
	<-writerDone
}

func completedMessage(completion app.Completion) outboundMessage[any] {
	return outboundMessage[any]{Type: "completed", Payload: completedPayload{
		Result:        completion.Result,
		ProgressSaved: completion.SaveErr == nil,
	}}
}

// ServeProgress reports the aggregated lesson progress for a learner.
func (h *WSHandler) ServeProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learnerId")
	lessonID := r.URL.Query().Get("lessonId")
	if learnerID == "" || lessonID == "" {
		http.Error(w, "missing learnerId or lessonId", http.StatusBadRequest)
		return
	}

	agg, err := h.recorder.Aggregate(r.Context(), learnerID, lessonID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(agg)
}
