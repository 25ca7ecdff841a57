package domain

import "time"

// QuestionType tags how a question is presented and validated.
// Unrecognized types are never judged correct.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionMatching       QuestionType = "matching"
)

// SectionType categorizes a lesson section for XP purposes.
type SectionType string

const (
	SectionVocabulary    SectionType = "vocabulary"
	SectionGrammar       SectionType = "grammar"
	SectionListening     SectionType = "listening"
	SectionQuiz          SectionType = "quiz"
	SectionPronunciation SectionType = "pronunciation"
)

// Question is one entry of a quiz. Options are meaningful only for
// choice-based types; CorrectAnswers is the canonical answer set.
type Question struct {
	ID             string       `bson:"id" json:"id"`
	Type           QuestionType `bson:"type" json:"type"`
	Prompt         string       `bson:"prompt" json:"prompt"`
	Options        []string     `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswers []string     `bson:"correct_answers" json:"correctAnswers"`
	Points         int          `bson:"points" json:"points"` // defaults to 1 if zero
	Order          int          `bson:"order" json:"order"`
}

// Quiz is an ordered, immutable collection of questions for a lesson.
type Quiz struct {
	ID                 string     `bson:"_id,omitempty" json:"id"`
	LessonID           string     `bson:"lesson_id" json:"lessonId"`
	Title              string     `bson:"title" json:"title"`
	Questions          []Question `bson:"questions" json:"questions"`
	TimeLimitSeconds   int        `bson:"time_limit_seconds" json:"timeLimitSeconds"`
	PassPercent        int        `bson:"pass_percent" json:"passPercent"`
	MinQuestions       int        `bson:"min_questions" json:"minQuestions"`
	MaxQuestions       int        `bson:"max_questions" json:"maxQuestions"`
	SecondsPerQuestion int        `bson:"seconds_per_question" json:"secondsPerQuestion"`
	Active             bool       `bson:"active" json:"active"`
}

// EffectiveTimeLimit resolves the session time budget in seconds. A quiz
// without an explicit limit falls back to its per-question budget, clamped
// to the adaptive question-count bounds.
func (q Quiz) EffectiveTimeLimit() int {
	if q.TimeLimitSeconds > 0 {
		return q.TimeLimitSeconds
	}
	if q.SecondsPerQuestion <= 0 {
		return 0
	}
	n := len(q.Questions)
	if q.MaxQuestions > 0 && n > q.MaxQuestions {
		n = q.MaxQuestions
	}
	if q.MinQuestions > 0 && n < q.MinQuestions {
		n = q.MinQuestions
	}
	return q.SecondsPerQuestion * n
}

// TotalPoints sums the attainable points across all questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		points := question.Points
		if points == 0 {
			points = 1
		}
		total += points
	}
	return total
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Session is one learner's attempt at a quiz. Values of this type are
// snapshots; the engine owns the live state.
type Session struct {
	ID               string        `bson:"_id,omitempty" json:"id"`
	LearnerID        string        `bson:"learner_id" json:"learnerId"`
	QuizID           string        `bson:"quiz_id" json:"quizId"`
	Index            int           `bson:"index" json:"index"`
	Answers          []Answer      `bson:"answers" json:"answers"`
	Score            int           `bson:"score" json:"score"`
	TotalQuestions   int           `bson:"total_questions" json:"totalQuestions"`
	RemainingSeconds int           `bson:"remaining_seconds" json:"remainingSeconds"`
	Status           SessionStatus `bson:"status" json:"status"`
	StartedAt        time.Time     `bson:"started_at" json:"startedAt"`
	CompletedAt      *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Answered reports whether an answer for questionID is already recorded.
func (s Session) Answered(questionID string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Answer records a single submission. Created once, never mutated.
type Answer struct {
	QuestionID       string    `bson:"question_id" json:"questionId"`
	Submitted        []string  `bson:"submitted" json:"submitted"`
	Correct          bool      `bson:"correct" json:"correct"`
	Points           int       `bson:"points" json:"points"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"timeSpentSeconds"`
	AnsweredAt       time.Time `bson:"answered_at" json:"answeredAt"`
}

// Result is the immutable scored outcome of a completed session.
// Accuracy is correct answers over total quiz questions, in [0,1];
// questions left unanswered at expiry count against it.
type Result struct {
	SessionID        string    `bson:"session_id" json:"sessionId"`
	LearnerID        string    `bson:"learner_id" json:"learnerId"`
	QuizID           string    `bson:"quiz_id" json:"quizId"`
	Score            int       `bson:"score" json:"score"`
	MaxScore         int       `bson:"max_score" json:"maxScore"`
	Accuracy         float64   `bson:"accuracy" json:"accuracy"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"timeSpentSeconds"`
	XP               int       `bson:"xp" json:"xp"`
	Passed           bool      `bson:"passed" json:"passed"`
	Answers          []Answer  `bson:"answers" json:"answers"`
	CompletedAt      time.Time `bson:"completed_at" json:"completedAt"`
}

// ProgressRecord is a durable, append-only entry for one completed activity.
type ProgressRecord struct {
	ID               string      `bson:"_id,omitempty" json:"id"`
	LearnerID        string      `bson:"learner_id" json:"learnerId"`
	LessonID         string      `bson:"lesson_id" json:"lessonId"`
	SectionID        string      `bson:"section_id" json:"sectionId"`
	SectionType      SectionType `bson:"section_type" json:"sectionType"`
	Score            int         `bson:"score" json:"score"`
	MaxScore         int         `bson:"max_score" json:"maxScore"`
	Accuracy         float64     `bson:"accuracy" json:"accuracy"`
	XP               int         `bson:"xp" json:"xp"`
	TimeSpentSeconds int         `bson:"time_spent_seconds" json:"timeSpentSeconds"`
	Passed           bool        `bson:"passed" json:"passed"`
	CompletedAt      time.Time   `bson:"completed_at" json:"completedAt"`
}

// UserProgress folds a learner's progress records for one lesson.
type UserProgress struct {
	LearnerID         string   `json:"learnerId"`
	LessonID          string   `json:"lessonId"`
	TotalXP           int      `json:"totalXp"`
	TotalTimeSeconds  int      `json:"totalTimeSeconds"`
	AverageAccuracy   float64  `json:"averageAccuracy"`
	CompletedSections []string `json:"completedSections"`
	Attempts          int      `json:"attempts"`
}
