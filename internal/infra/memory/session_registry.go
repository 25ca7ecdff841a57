package memory

import (
	"sync"

	"lingua-quiz-service/internal/app"
	"lingua-quiz-service/internal/domain"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
// It indexes live runners by session id and by learner+quiz so a second
// attempt at the same quiz is refused while one is in progress.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	active   map[string]string // learner+quiz -> session id
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
		active:   make(map[string]string),
	}
}

func (r *SessionRegistry) Register(session *app.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attemptKey(session.LearnerID(), session.QuizID())
	if _, ok := r.active[key]; ok {
		return &domain.InvalidStateError{Reason: "learner already has an active attempt at this quiz"}
	}
	r.sessions[session.ID()] = session
	r.active[key] = session.ID()
	return nil
}

func (r *SessionRegistry) Get(sessionID string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Deactivate frees the learner+quiz slot; the session itself stays
// reachable until Release.
func (r *SessionRegistry) Deactivate(learnerID, quizID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, attemptKey(learnerID, quizID))
}

func (r *SessionRegistry) Release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	key := attemptKey(session.LearnerID(), session.QuizID())
	if r.active[key] == sessionID {
		delete(r.active, key)
	}
}

func attemptKey(learnerID, quizID string) string {
	return learnerID + "/" + quizID
}
