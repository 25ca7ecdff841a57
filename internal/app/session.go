package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"lingua-quiz-service/internal/domain"
	"lingua-quiz-service/internal/scoring"
)

// Completion is the terminal outcome of a session. SaveErr is non-nil
// when the progress write failed; the Result is valid either way.
type Completion struct {
	Result  domain.Result
	SaveErr error
}

// Advanced is the outcome of an Advance call.
type Advanced struct {
	Completed  bool
	Question   *domain.Question
	Completion *Completion
}

// Session is a live quiz attempt. All state is owned by a single runner
// goroutine; callers reach it through commands on a channel, so timer
// ticks and submissions can never race.
type Session struct {
	id        string
	learnerID string
	quiz      domain.Quiz
	engine    *Engine

	cmds   chan command
	quit   chan struct{}
	exited chan struct{}
	once   sync.Once

	// Owned by the runner loop. Never touched from outside it.
	state             domain.Session
	questionStartedAt time.Time
	completion        *Completion
	watchers          map[chan Completion]struct{}
	timed             bool
}

type command struct {
	run  func()
	done chan struct{}
}

func newSession(id, learnerID string, quiz domain.Quiz, engine *Engine) *Session {
	now := engine.now()
	limit := quiz.EffectiveTimeLimit()
	return &Session{
		id:        id,
		learnerID: learnerID,
		quiz:      quiz,
		engine:    engine,
		cmds:      make(chan command),
		quit:      make(chan struct{}),
		exited:    make(chan struct{}),
		state: domain.Session{
			ID:               id,
			LearnerID:        learnerID,
			QuizID:           quiz.ID,
			Answers:          []domain.Answer{},
			TotalQuestions:   len(quiz.Questions),
			RemainingSeconds: limit,
			Status:           domain.SessionNotStarted,
			StartedAt:        now,
		},
		questionStartedAt: now,
		watchers:          make(map[chan Completion]struct{}),
		timed:             limit > 0,
	}
}

// NewSession is exported for infrastructure layers that need to track
// sessions without starting them.
func NewSession(id, learnerID string, quiz domain.Quiz) *Session {
	return &Session{id: id, learnerID: learnerID, quiz: quiz}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// LearnerID returns the owning learner.
func (s *Session) LearnerID() string { return s.learnerID }

// QuizID returns the quiz under attempt.
func (s *Session) QuizID() string { return s.quiz.ID }

func (s *Session) start() {
	s.state.Status = domain.SessionInProgress
	go s.loop()
}

func (s *Session) stop() {
	s.once.Do(func() { close(s.quit) })
}

func (s *Session) loop() {
	defer close(s.exited)

	var tickC <-chan time.Time
	if s.timed {
		ticker := time.NewTicker(s.engine.tick)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case cmd := <-s.cmds:
			cmd.run()
			close(cmd.done)
		case <-tickC:
			if s.state.Status == domain.SessionInProgress {
				s.onTick()
			}
		case <-s.quit:
			return
		}
	}
}

// do runs fn inside the runner loop and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	cmd := command{run: fn, done: make(chan struct{})}
	select {
	case s.cmds <- cmd:
	case <-s.exited:
		return &domain.NotFoundError{Entity: "session", ID: s.id}
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CurrentQuestion returns the question at the current index.
func (s *Session) CurrentQuestion(ctx context.Context) (domain.Question, error) {
	var question domain.Question
	var opErr error
	if err := s.do(ctx, func() {
		if s.state.Index >= s.state.TotalQuestions {
			opErr = &domain.InvalidStateError{Reason: "question index out of range"}
			return
		}
		question = s.quiz.Questions[s.state.Index]
	}); err != nil {
		return domain.Question{}, err
	}
	return question, opErr
}

// Submit validates and records an answer for the current question.
func (s *Session) Submit(ctx context.Context, questionID string, submitted []string) (domain.Answer, error) {
	var answer domain.Answer
	var opErr error
	if err := s.do(ctx, func() {
		answer, opErr = s.submit(questionID, submitted)
	}); err != nil {
		return domain.Answer{}, err
	}
	return answer, opErr
}

func (s *Session) submit(questionID string, submitted []string) (domain.Answer, error) {
	if s.state.Status == domain.SessionCompleted {
		return domain.Answer{}, &domain.InvalidStateError{Reason: "session already completed"}
	}
	if blank(submitted) {
		return domain.Answer{}, &domain.ValidationError{Reason: "answer must not be empty"}
	}

	question := s.quiz.Questions[s.state.Index]
	if questionID != question.ID {
		return domain.Answer{}, &domain.ValidationError{Reason: "question " + questionID + " is not the current question"}
	}
	if s.state.Answered(question.ID) {
		return domain.Answer{}, &domain.InvalidStateError{Reason: "current question already answered"}
	}

	correct := scoring.Validate(question, submitted)
	points := scoring.PointsForAnswer(question, correct)
	now := s.engine.now()

	answer := domain.Answer{
		QuestionID:       question.ID,
		Submitted:        append([]string(nil), submitted...),
		Correct:          correct,
		Points:           points,
		TimeSpentSeconds: int(now.Sub(s.questionStartedAt).Seconds()),
		AnsweredAt:       now,
	}
	s.state.Answers = append(s.state.Answers, answer)
	s.state.Score += points
	return answer, nil
}

// Advance moves to the next question, or finalizes after the last one.
func (s *Session) Advance(ctx context.Context) (Advanced, error) {
	var advanced Advanced
	var opErr error
	if err := s.do(ctx, func() {
		advanced, opErr = s.advance()
	}); err != nil {
		return Advanced{}, err
	}
	return advanced, opErr
}

func (s *Session) advance() (Advanced, error) {
	if s.state.Status == domain.SessionCompleted {
		return Advanced{}, &domain.InvalidStateError{Reason: "session already completed"}
	}
	if s.state.Index >= s.state.TotalQuestions-1 {
		completion := s.finalize()
		return Advanced{Completed: true, Completion: &completion}, nil
	}
	s.state.Index++
	s.questionStartedAt = s.engine.now()
	question := s.quiz.Questions[s.state.Index]
	return Advanced{Question: &question}, nil
}

func (s *Session) onTick() {
	if s.state.RemainingSeconds > 0 {
		s.state.RemainingSeconds--
	}
	if s.state.RemainingSeconds <= 0 {
		// Time budget exhausted; unanswered questions score zero.
		s.finalize()
	}
}

// finalize computes the result, records progress, and notifies watchers.
// The result is always produced, even when the progress write fails.
func (s *Session) finalize() Completion {
	completedAt := s.engine.now()
	s.state.Status = domain.SessionCompleted
	s.state.CompletedAt = &completedAt

	result := BuildResult(s.quiz, s.state)
	saveErr := s.engine.persist(s, result)
	s.engine.publishCompleted(result)
	s.engine.registry.Deactivate(s.learnerID, s.quiz.ID)

	completion := Completion{Result: result, SaveErr: saveErr}
	s.completion = &completion
	for ch := range s.watchers {
		select {
		case ch <- completion:
		default:
		}
	}
	return completion
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot(ctx context.Context) (domain.Session, error) {
	var snapshot domain.Session
	if err := s.do(ctx, func() {
		snapshot = s.state
		snapshot.Answers = append([]domain.Answer(nil), s.state.Answers...)
	}); err != nil {
		return domain.Session{}, err
	}
	return snapshot, nil
}

func (s *Session) watch() (<-chan Completion, func()) {
	ch := make(chan Completion, 1)
	_ = s.do(context.Background(), func() {
		if s.completion != nil {
			ch <- *s.completion
			return
		}
		s.watchers[ch] = struct{}{}
	})
	cancel := func() {
		_ = s.do(context.Background(), func() {
			delete(s.watchers, ch)
		})
	}
	return ch, cancel
}

// BuildResult derives the immutable result from a frozen session. It is
// deterministic: the same session state always yields the same result.
// Accuracy divides correct answers by the quiz's total question count,
// so questions left unanswered at expiry count against it.
func BuildResult(quiz domain.Quiz, session domain.Session) domain.Result {
	correct := 0
	for _, a := range session.Answers {
		if a.Correct {
			correct++
		}
	}
	accuracy := 0.0
	if session.TotalQuestions > 0 {
		accuracy = float64(correct) / float64(session.TotalQuestions)
	}

	completedAt := session.StartedAt
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}
	timeSpent := int(completedAt.Sub(session.StartedAt).Seconds())

	maxScore := quiz.TotalPoints()
	answers := append([]domain.Answer(nil), session.Answers...)

	return domain.Result{
		SessionID:        session.ID,
		LearnerID:        session.LearnerID,
		QuizID:           session.QuizID,
		Score:            session.Score,
		MaxScore:         maxScore,
		Accuracy:         accuracy,
		TimeSpentSeconds: timeSpent,
		XP:               scoring.XPForResult(session.Score, accuracy, timeSpent),
		Passed:           maxScore > 0 && session.Score*100 >= quiz.PassPercent*maxScore,
		Answers:          answers,
		CompletedAt:      completedAt,
	}
}

func blank(submitted []string) bool {
	if len(submitted) == 0 {
		return true
	}
	for _, s := range submitted {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
