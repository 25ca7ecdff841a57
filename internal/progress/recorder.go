// Package progress persists finalized learning activity and folds it
// into per-lesson running totals.
package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingua-quiz-service/internal/docstore"
	"lingua-quiz-service/internal/domain"
)

// Collection is the document collection holding progress records.
const Collection = "progress"

// Recorder writes and aggregates durable progress entries.
type Recorder struct {
	store docstore.Store
	log   *zap.Logger
	newID func() string
}

func NewRecorder(store docstore.Store, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log, newID: uuid.NewString}
}

// Record persists a finalized quiz result as a progress entry and
// returns the new record id. Failures come back as *PersistenceError;
// they are logged here and must never abort the caller's completion
// flow.
func (r *Recorder) Record(ctx context.Context, learnerID, lessonID, sectionID string, result domain.Result) (string, error) {
	record := domain.ProgressRecord{
		ID:               r.newID(),
		LearnerID:        learnerID,
		LessonID:         lessonID,
		SectionID:        sectionID,
		SectionType:      domain.SectionQuiz,
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		Accuracy:         result.Accuracy,
		XP:               result.XP,
		TimeSpentSeconds: result.TimeSpentSeconds,
		Passed:           result.Passed,
		CompletedAt:      result.CompletedAt,
	}

	if err := r.store.Set(ctx, Collection, record.ID, record); err != nil {
		r.log.Error("progress write failed",
			zap.String("learner", learnerID),
			zap.String("lesson", lessonID),
			zap.Error(err))
		return "", asPersistence("record progress", err)
	}
	return record.ID, nil
}

// Aggregate folds every progress record for the learner and lesson into
// running totals. It recomputes from the full history on each call;
// per-learner lesson histories are small.
func (r *Recorder) Aggregate(ctx context.Context, learnerID, lessonID string) (domain.UserProgress, error) {
	var records []domain.ProgressRecord
	filter := map[string]any{"learner_id": learnerID, "lesson_id": lessonID}
	if err := r.store.Query(ctx, Collection, filter, &records); err != nil {
		return domain.UserProgress{}, asPersistence("aggregate progress", err)
	}

	agg := domain.UserProgress{LearnerID: learnerID, LessonID: lessonID}
	seen := make(map[string]bool)
	accuracySum := 0.0
	for _, record := range records {
		agg.TotalXP += record.XP
		agg.TotalTimeSeconds += record.TimeSpentSeconds
		agg.Attempts++
		accuracySum += record.Accuracy
		if record.Passed && !seen[record.SectionID] {
			seen[record.SectionID] = true
			agg.CompletedSections = append(agg.CompletedSections, record.SectionID)
		}
	}
	if agg.Attempts > 0 {
		agg.AverageAccuracy = accuracySum / float64(agg.Attempts)
	}
	return agg, nil
}

// Reset bulk-deletes the learner's records for a lesson in one atomic
// batch.
func (r *Recorder) Reset(ctx context.Context, learnerID, lessonID string) error {
	var records []domain.ProgressRecord
	filter := map[string]any{"learner_id": learnerID, "lesson_id": lessonID}
	if err := r.store.Query(ctx, Collection, filter, &records); err != nil {
		return asPersistence("reset progress", err)
	}
	if len(records) == 0 {
		return nil
	}

	ops := make([]docstore.Op, 0, len(records))
	for _, record := range records {
		ops = append(ops, docstore.Op{
			Collection: Collection,
			ID:         record.ID,
			Action:     docstore.ActionDelete,
		})
	}
	if err := r.store.BatchWrite(ctx, ops); err != nil {
		return asPersistence("reset progress", err)
	}
	r.log.Info("progress reset",
		zap.String("learner", learnerID),
		zap.String("lesson", lessonID),
		zap.Int("records", len(records)))
	return nil
}

// asPersistence keeps typed store failures intact and wraps anything else.
func asPersistence(op string, err error) error {
	var pe *domain.PersistenceError
	var nf *domain.NotFoundError
	if errors.As(err, &pe) || errors.As(err, &nf) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
