package scoring

import (
	"strings"

	"lingua-quiz-service/internal/domain"
)

// Validate judges a submission against a question's canonical answers.
// It never returns an error: a malformed submission or an unrecognized
// question type degrades to "not correct" so a single bad answer can
// never take down a session.
func Validate(q domain.Question, submitted []string) bool {
	if len(q.CorrectAnswers) == 0 {
		return false
	}

	switch q.Type {
	case domain.QuestionMultipleChoice, domain.QuestionTrueFalse:
		if len(submitted) != 1 {
			return false
		}
		return matchesAny(submitted[0], q.CorrectAnswers, false)
	case domain.QuestionFillBlank:
		if len(submitted) != 1 {
			return false
		}
		return matchesAny(strings.TrimSpace(submitted[0]), q.CorrectAnswers, true)
	case domain.QuestionMatching:
		if len(submitted) != len(q.CorrectAnswers) {
			return false
		}
		// Order-sensitive, case-sensitive pairing.
		for i, answer := range submitted {
			if answer != q.CorrectAnswers[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// matchesAny reports whether answer case-insensitively equals any of the
// correct answers, optionally trimming whitespace from the correct side.
func matchesAny(answer string, correct []string, trim bool) bool {
	for _, c := range correct {
		if trim {
			c = strings.TrimSpace(c)
		}
		if strings.EqualFold(answer, c) {
			return true
		}
	}
	return false
}
