package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingua-quiz-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ProgressRecorder persists a finalized result as a durable progress entry.
type ProgressRecorder interface {
	Record(ctx context.Context, learnerID, lessonID, sectionID string, result domain.Result) (string, error)
}

// SessionRegistry tracks live session runners. Register fails when the
// learner already has an in-progress attempt at the same quiz.
type SessionRegistry interface {
	Register(session *Session) error
	Get(sessionID string) (*Session, bool)
	Deactivate(learnerID, quizID string)
	Release(sessionID string)
}

// EventPublisher broadcasts domain events to interested services.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Engine drives quiz sessions: it starts runners, routes submissions and
// advances into them, and finalizes results into progress records.
type Engine struct {
	quizzes  QuizRepository
	registry SessionRegistry
	recorder ProgressRecorder
	events   EventPublisher
	log      *zap.Logger
	tick     time.Duration
	now      func() time.Time
	saveWait time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTick overrides the countdown interval (tests use millisecond ticks).
func WithTick(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithClock overrides the engine clock for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPublisher attaches an event publisher for completion events.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

func NewEngine(quizzes QuizRepository, registry SessionRegistry, recorder ProgressRecorder, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		quizzes:  quizzes,
		registry: registry,
		recorder: recorder,
		log:      log,
		tick:     time.Second,
		now:      time.Now,
		saveWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession creates and starts a session for learnerID on quizID.
// The quiz must exist, be active, and have at least one question; a
// learner may not hold two in-progress attempts at the same quiz.
func (e *Engine) StartSession(ctx context.Context, learnerID, quizID string) (domain.Session, error) {
	if learnerID == "" || quizID == "" {
		return domain.Session{}, &domain.ValidationError{Reason: "learner and quiz ids are required"}
	}

	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.Session{}, &domain.NotFoundError{Entity: "quiz", ID: quizID}
		}
		return domain.Session{}, err
	}
	if !quiz.Active {
		return domain.Session{}, &domain.InvalidStateError{Reason: "quiz is not active"}
	}
	if len(quiz.Questions) == 0 {
		return domain.Session{}, &domain.ValidationError{Reason: "quiz has no questions"}
	}

	session := newSession(uuid.NewString(), learnerID, quiz, e)
	if err := e.registry.Register(session); err != nil {
		return domain.Session{}, err
	}
	session.start()

	e.log.Info("session started",
		zap.String("session", session.id),
		zap.String("learner", learnerID),
		zap.String("quiz", quizID))
	return session.Snapshot(ctx)
}

// CurrentQuestion returns the question at the session's current index.
func (e *Engine) CurrentQuestion(ctx context.Context, sessionID string) (domain.Question, error) {
	session, err := e.session(sessionID)
	if err != nil {
		return domain.Question{}, err
	}
	return session.CurrentQuestion(ctx)
}

// SubmitAnswer validates and records an answer for the session's current
// question. It does not advance the index.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, questionID string, submitted []string) (domain.Answer, error) {
	session, err := e.session(sessionID)
	if err != nil {
		return domain.Answer{}, err
	}
	return session.Submit(ctx, questionID, submitted)
}

// Advance moves the session to the next question, or finalizes it when
// the current question was the last one.
func (e *Engine) Advance(ctx context.Context, sessionID string) (Advanced, error) {
	session, err := e.session(sessionID)
	if err != nil {
		return Advanced{}, err
	}
	return session.Advance(ctx)
}

// Snapshot returns a copy of the session's current state.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := e.session(sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	return session.Snapshot(ctx)
}

// Watch returns a channel receiving the session's completion (normal or
// time-forced). The caller must invoke cancel to avoid leaks.
func (e *Engine) Watch(sessionID string) (<-chan Completion, func(), error) {
	session, err := e.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.watch()
	return ch, cancel, nil
}

// Release stops the session's runner and drops it from the registry.
// In-progress sessions are abandoned without a result.
func (e *Engine) Release(sessionID string) {
	if session, ok := e.registry.Get(sessionID); ok {
		session.stop()
		e.registry.Deactivate(session.learnerID, session.quiz.ID)
		e.registry.Release(sessionID)
	}
}

func (e *Engine) session(sessionID string) (*Session, error) {
	session, ok := e.registry.Get(sessionID)
	if !ok {
		return nil, &domain.NotFoundError{Entity: "session", ID: sessionID}
	}
	return session, nil
}

// persist writes the finalized result through the progress recorder on a
// detached context, so a canceled caller cannot abort the write midway.
func (e *Engine) persist(session *Session, result domain.Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.saveWait)
	defer cancel()

	recordID, err := e.recorder.Record(ctx, result.LearnerID, session.quiz.LessonID, result.QuizID, result)
	if err != nil {
		e.log.Warn("progress not saved",
			zap.String("session", result.SessionID),
			zap.Error(err))
		return err
	}
	e.log.Info("progress recorded",
		zap.String("session", result.SessionID),
		zap.String("record", recordID))
	return nil
}

func (e *Engine) publishCompleted(result domain.Result) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish("session.completed", result); err != nil {
		e.log.Warn("completion event not published", zap.Error(err))
	}
}
