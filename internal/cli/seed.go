package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"lingua-quiz-service/internal/config"
	"lingua-quiz-service/internal/domain"
	pgloader "lingua-quiz-service/internal/infra/postgres"
)

// NewSeedCmd loads the sample quizzes into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sample quiz content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			db := openBunDB(cfg.Postgres.URL)
			defer db.Close()

			quizzes := quizList(sampleQuizzes())
			if err := pgloader.Seed(cmd.Context(), db, quizzes); err != nil {
				return err
			}
			log.Printf("seeded %d quizzes", len(quizzes))
			return nil
		},
	}
}

func quizList(m map[string]domain.Quiz) []domain.Quiz {
	quizzes := make([]domain.Quiz, 0, len(m))
	for _, quiz := range m {
		quizzes = append(quizzes, quiz)
	}
	return quizzes
}

// sampleQuizzes provides a minimal content set; production content comes
// from the Postgres-backed loader.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-basics-1": {
			ID:               "quiz-basics-1",
			LessonID:         "lesson-greetings",
			Title:            "Greetings basics",
			TimeLimitSeconds: 120,
			PassPercent:      70,
			Active:           true,
			Questions: []domain.Question{
				{
					ID:             "q1",
					Type:           domain.QuestionMultipleChoice,
					Prompt:         "How do you say 'hello' in Spanish?",
					Options:        []string{"Hola", "Adios", "Gracias"},
					CorrectAnswers: []string{"Hola"},
					Points:         1,
					Order:          0,
				},
				{
					ID:             "q2",
					Type:           domain.QuestionFillBlank,
					Prompt:         "___ means 'thank you'.",
					CorrectAnswers: []string{"Gracias"},
					Points:         2,
					Order:          1,
				},
				{
					ID:             "q3",
					Type:           domain.QuestionTrueFalse,
					Prompt:         "'Adios' means 'goodbye'.",
					Options:        []string{"true", "false"},
					CorrectAnswers: []string{"true"},
					Points:         1,
					Order:          2,
				},
				{
					ID:             "q4",
					Type:           domain.QuestionMatching,
					Prompt:         "Match the greetings to the time of day: morning, evening.",
					Options:        []string{"Buenos dias", "Buenas noches"},
					CorrectAnswers: []string{"Buenos dias", "Buenas noches"},
					Points:         2,
					Order:          3,
				},
			},
		},
	}
}
