package scoring

import (
	"testing"
	"time"

	"lingua-quiz-service/internal/domain"
)

func TestPointsForAnswer(t *testing.T) {
	q := domain.Question{Points: 3}
	if got := PointsForAnswer(q, true); got != 3 {
		t.Fatalf("expected 3 points, got %d", got)
	}
	if got := PointsForAnswer(q, false); got != 0 {
		t.Fatalf("expected 0 points for incorrect, got %d", got)
	}
	if got := PointsForAnswer(domain.Question{}, true); got != 1 {
		t.Fatalf("expected default 1 point, got %d", got)
	}
}

func TestXPForResult(t *testing.T) {
	if got := XPForResult(100, 1.0, 200); got != 160 {
		t.Fatalf("expected 160 (100 + 50 + speed bonus), got %d", got)
	}
	if got := XPForResult(100, 0.5, 400); got != 125 {
		t.Fatalf("expected 125 (100 + 25, no bonus), got %d", got)
	}
	if got := XPForResult(0, 0, 1000); got != 0 {
		t.Fatalf("expected 0 XP for empty result, got %d", got)
	}
}

func TestXPForSection(t *testing.T) {
	if got := XPForSection(domain.SectionQuiz, 1.0); got != 20 {
		t.Fatalf("expected full quiz base 20, got %d", got)
	}
	if got := XPForSection(domain.SectionPronunciation, 0.5); got != 12 {
		t.Fatalf("expected floor(25*0.5)=12, got %d", got)
	}
	if got := XPForSection(domain.SectionVocabulary, 0.99); got != 9 {
		t.Fatalf("expected floor(10*0.99)=9, got %d", got)
	}
	if got := XPForSection(domain.SectionType("unknown"), 1.0); got != 10 {
		t.Fatalf("expected vocabulary base for unknown section, got %d", got)
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(nil); got != 0.0 {
		t.Fatalf("expected 0.0 for empty list, got %f", got)
	}

	now := time.Now()
	allCorrect := []domain.Answer{
		{QuestionID: "q1", Correct: true, AnsweredAt: now},
		{QuestionID: "q2", Correct: true, AnsweredAt: now},
	}
	if got := Accuracy(allCorrect); got != 1.0 {
		t.Fatalf("expected 1.0 when all correct, got %f", got)
	}

	half := append(allCorrect, []domain.Answer{
		{QuestionID: "q3", Correct: false},
		{QuestionID: "q4", Correct: false},
	}...)
	if got := Accuracy(half); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}
