package redis

import (
	"errors"
	"testing"
	"time"

	"lingua-quiz-service/internal/app"
	"lingua-quiz-service/internal/domain"
)

func TestRegistrySetsLivenessKey(t *testing.T) {
	mr, client := newTestRedis(t)
	registry := NewSessionRegistry(client, time.Hour)

	session := app.NewSession("session-1", "learner-1", domain.Quiz{ID: "quiz-1"})
	if err := registry.Register(session); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !mr.Exists("quiz:attempt:learner-1:quiz-1") {
		t.Fatalf("expected liveness key in redis")
	}

	var invalid *domain.InvalidStateError
	if err := registry.Register(app.NewSession("session-2", "learner-1", domain.Quiz{ID: "quiz-1"})); !errors.As(err, &invalid) {
		t.Fatalf("expected duplicate attempt rejection, got %v", err)
	}

	if got, ok := registry.Get("session-1"); !ok || got.ID() != "session-1" {
		t.Fatalf("expected local lookup to find session-1")
	}
}

func TestRegistryDeactivateClearsKey(t *testing.T) {
	mr, client := newTestRedis(t)
	registry := NewSessionRegistry(client, time.Hour)

	if err := registry.Register(app.NewSession("session-1", "learner-1", domain.Quiz{ID: "quiz-1"})); err != nil {
		t.Fatalf("register: %v", err)
	}

	registry.Deactivate("learner-1", "quiz-1")
	if mr.Exists("quiz:attempt:learner-1:quiz-1") {
		t.Fatalf("expected liveness key cleared")
	}
	if err := registry.Register(app.NewSession("session-2", "learner-1", domain.Quiz{ID: "quiz-1"})); err != nil {
		t.Fatalf("expected slot freed, got %v", err)
	}
}

func TestRegistryReleaseClearsEverything(t *testing.T) {
	mr, client := newTestRedis(t)
	registry := NewSessionRegistry(client, time.Hour)

	if err := registry.Register(app.NewSession("session-1", "learner-1", domain.Quiz{ID: "quiz-1"})); err != nil {
		t.Fatalf("register: %v", err)
	}

	registry.Release("session-1")
	if mr.Exists("quiz:attempt:learner-1:quiz-1") {
		t.Fatalf("expected liveness key cleared on release")
	}
	if _, ok := registry.Get("session-1"); ok {
		t.Fatalf("expected released session to be gone")
	}
}

func TestRegistryAttemptKeyExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	registry := NewSessionRegistry(client, time.Minute)

	if err := registry.Register(app.NewSession("session-1", "learner-1", domain.Quiz{ID: "quiz-1"})); err != nil {
		t.Fatalf("register: %v", err)
	}

	// An abandoned attempt's key falls out on its own.
	mr.FastForward(2 * time.Minute)
	if mr.Exists("quiz:attempt:learner-1:quiz-1") {
		t.Fatalf("expected liveness key to expire")
	}
}
