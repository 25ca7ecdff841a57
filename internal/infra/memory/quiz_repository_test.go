package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"lingua-quiz-service/internal/domain"
)

type countingLoader struct {
	inner QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.inner.LoadQuiz(ctx, quizID)
}

func TestGetQuizCachesLoads(t *testing.T) {
	loader := &countingLoader{inner: NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1", Title: "Greetings", Active: true},
	})}
	repo := NewQuizRepository(loader, time.Minute)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
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
}

func TestGetQuizExpiry(t *testing.T) {
	loader := &countingLoader{inner: NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1"},
	})}
	repo := NewQuizRepository(loader, time.Minute)

	current := time.Now()
	repo.clock = func() time.Time { return current }

	ctx := context.Background()
	if _, err := repo.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	// Jitter adds at most 10%, so two TTLs later the entry is stale.
	current = current.Add(2 * time.Minute)
	if _, err := repo.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestGetQuizMissing(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)

	_, err := repo.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
