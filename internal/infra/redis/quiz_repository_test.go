package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"lingua-quiz-service/internal/domain"
	"lingua-quiz-service/internal/infra/memory"
)

type countingLoader struct {
	inner QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.inner.LoadQuiz(ctx, quizID)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestGetQuizPopulatesCache(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingLoader{inner: memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Title: "Greetings", Active: true},
	})}
	repo := NewQuizRepository(client, loader, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		quiz, err := repo.GetQuiz(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if quiz.Title != "Greetings" {
			t.Fatalf("unexpected quiz: %+v", quiz)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single backing load, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:doc") {
		t.Fatalf("expected cached document under quiz:quiz-1:doc")
	}
}

func TestGetQuizDropsCorruptEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingLoader{inner: memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Title: "Greetings"},
	})}
	repo := NewQuizRepository(client, loader, time.Minute)

	mr.Set("quiz:quiz-1:doc", "{not json")

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Title != "Greetings" || loader.calls != 1 {
		t.Fatalf("expected reload past corrupt entry, got %+v after %d calls", quiz, loader.calls)
	}
}

func TestGetQuizMissing(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewQuizRepository(client, memory.NewStaticQuizLoader(nil), time.Minute)

	_, err := repo.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
