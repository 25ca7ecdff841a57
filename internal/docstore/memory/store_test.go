package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"lingua-quiz-service/internal/docstore"
	"lingua-quiz-service/internal/domain"
)

type doc struct {
	ID        string `bson:"_id"`
	LearnerID string `bson:"learner_id"`
	XP        int    `bson:"xp"`
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a", LearnerID: "l1", XP: 10}))

	var got doc
	require.NoError(t, store.Get(ctx, "progress", "a", &got))
	require.Equal(t, doc{ID: "a", LearnerID: "l1", XP: 10}, got)

	// Set overwrites in place.
	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a", LearnerID: "l1", XP: 25}))
	require.NoError(t, store.Get(ctx, "progress", "a", &got))
	require.Equal(t, 25, got.XP)
}

func TestGetMissingDocument(t *testing.T) {
	store := New()

	var got doc
	err := store.Get(context.Background(), "progress", "nope", &got)
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestQueryFiltersByField(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a", LearnerID: "l1", XP: 10}))
	require.NoError(t, store.Set(ctx, "progress", "b", doc{ID: "b", LearnerID: "l2", XP: 20}))
	require.NoError(t, store.Set(ctx, "progress", "c", doc{ID: "c", LearnerID: "l1", XP: 30}))

	var got []doc
	require.NoError(t, store.Query(ctx, "progress", map[string]any{"learner_id": "l1"}, &got))
	require.Len(t, got, 2)
	for _, d := range got {
		require.Equal(t, "l1", d.LearnerID)
	}

	require.NoError(t, store.Query(ctx, "progress", map[string]any{"learner_id": "l3"}, &got))
	require.Empty(t, got)

	var all []doc
	require.NoError(t, store.GetAll(ctx, "progress", &all))
	require.Len(t, all, 3)
}

func TestQueryRequiresSlicePointer(t *testing.T) {
	store := New()

	var got doc
	err := store.Query(context.Background(), "progress", nil, &got)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
}

func TestUpdateFields(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a", LearnerID: "l1", XP: 10}))
	require.NoError(t, store.UpdateFields(ctx, "progress", "a", map[string]any{"xp": 99}))

	var got doc
	require.NoError(t, store.Get(ctx, "progress", "a", &got))
	require.Equal(t, 99, got.XP)
	require.Equal(t, "l1", got.LearnerID)

	err := store.UpdateFields(ctx, "progress", "nope", map[string]any{"xp": 1})
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a"}))
	require.NoError(t, store.Delete(ctx, "progress", "a"))

	var got doc
	require.ErrorIs(t, store.Get(ctx, "progress", "a", &got), domain.ErrDocumentNotFound)
	require.ErrorIs(t, store.Delete(ctx, "progress", "a"), domain.ErrDocumentNotFound)
}

func TestBatchWriteAtomic(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "progress", "a", doc{ID: "a", XP: 10}))

	// One bad delete poisons the whole batch.
	err := store.BatchWrite(ctx, []docstore.Op{
		{Collection: "progress", ID: "b", Doc: doc{ID: "b", XP: 20}, Action: docstore.ActionSet},
		{Collection: "progress", ID: "missing", Action: docstore.ActionDelete},
	})
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)

	var got doc
	require.ErrorIs(t, store.Get(ctx, "progress", "b", &got), domain.ErrDocumentNotFound)

	// A valid batch applies every op.
	require.NoError(t, store.BatchWrite(ctx, []docstore.Op{
		{Collection: "progress", ID: "b", Doc: doc{ID: "b", XP: 20}, Action: docstore.ActionSet},
		{Collection: "progress", ID: "a", Fields: map[string]any{"xp": 11}, Action: docstore.ActionUpdate},
	}))
	require.NoError(t, store.Get(ctx, "progress", "a", &got))
	require.Equal(t, 11, got.XP)
	require.NoError(t, store.Get(ctx, "progress", "b", &got))
	require.Equal(t, 20, got.XP)

	require.NoError(t, store.BatchWrite(ctx, []docstore.Op{
		{Collection: "progress", ID: "a", Action: docstore.ActionDelete},
		{Collection: "progress", ID: "b", Action: docstore.ActionDelete},
	}))
	var all []doc
	require.NoError(t, store.GetAll(ctx, "progress", &all))
	require.Empty(t, all)
}
