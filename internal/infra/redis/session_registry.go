package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"lingua-quiz-service/internal/app"
	"lingua-quiz-service/internal/domain"
	"lingua-quiz-service/internal/infra/memory"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - Runners are live goroutines, so they stay in a local in-process map;
//     Redis cannot hold them.
//   - Redis marks attempt liveness across instances, so two instances
//     refuse the same learner+quiz attempt.
//   - For true distribution you'd pair this with pub/sub routing of
//     session commands to the owning instance.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.SessionRegistry
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client: client,
		ttl:    ttl,
		local:  memory.NewSessionRegistry(),
	}
}

func (r *SessionRegistry) Register(session *app.Session) error {
	key := r.attemptKey(session.LearnerID(), session.QuizID())
	ok, err := r.client.SetNX(context.Background(), key, session.ID(), r.ttl).Result()
	if err == nil && !ok {
		return &domain.InvalidStateError{Reason: "learner already has an active attempt at this quiz"}
	}
	// Redis failure degrades to local-only duplicate detection.
	if err := r.local.Register(session); err != nil {
		_ = r.client.Del(context.Background(), key).Err()
		return err
	}
	return nil
}

func (r *SessionRegistry) Get(sessionID string) (*app.Session, bool) {
	return r.local.Get(sessionID)
}

func (r *SessionRegistry) Deactivate(learnerID, quizID string) {
	r.local.Deactivate(learnerID, quizID)
	_ = r.client.Del(context.Background(), r.attemptKey(learnerID, quizID)).Err()
}

func (r *SessionRegistry) Release(sessionID string) {
	if session, ok := r.local.Get(sessionID); ok {
		_ = r.client.Del(context.Background(), r.attemptKey(session.LearnerID(), session.QuizID())).Err()
	}
	r.local.Release(sessionID)
}

func (r *SessionRegistry) attemptKey(learnerID, quizID string) string {
	return "quiz:attempt:" + learnerID + ":" + quizID
}
