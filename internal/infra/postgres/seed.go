package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"lingua-quiz-service/internal/domain"
)

// Seed upserts quiz content into the quizzes table. Used by the seed CLI
// command and by integration tests.
func Seed(ctx context.Context, db *bun.DB, quizzes []domain.Quiz) error {
	for _, quiz := range quizzes {
		data, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO quizzes (id, lesson_id, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (id) DO UPDATE SET lesson_id=EXCLUDED.lesson_id, data=EXCLUDED.data`,
			quiz.ID, quiz.LessonID, string(data))
		if err != nil {
			return fmt.Errorf("insert quiz %s: %w", quiz.ID, err)
		}
	}
	return nil
}
