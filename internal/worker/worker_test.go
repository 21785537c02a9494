package worker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCommitItems_DedupesPerLearner(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	batch := []*CommitJob{
		{LearnerID: alice, Difficulty: model.DifficultyBeginner, Words: []model.VocabularyItem{
			{Word: "사과", Meaning: "苹果"},
			{Word: "물", Meaning: "水"},
		}},
		{LearnerID: alice, Difficulty: model.DifficultyBeginner, Words: []model.VocabularyItem{
			{Word: "사과", Meaning: "苹果"},
			{Word: ""},
		}},
		{LearnerID: bob, Difficulty: model.DifficultyAdvanced, Words: []model.VocabularyItem{
			{Word: "사과", Meaning: "道歉"},
		}},
	}

	items := commitItems(batch, now)
	require.Len(t, items, 3)

	require.Equal(t, alice, items[0].LearnerID)
	require.Equal(t, "사과", items[0].Data.Word)
	require.Equal(t, "물", items[1].Data.Word)
	require.Equal(t, bob, items[2].LearnerID)
	require.Equal(t, model.DifficultyAdvanced, items[2].Difficulty)

	for _, it := range items {
		require.Equal(t, model.StatusLearning, it.Status)
		require.Equal(t, now, it.CreatedAt)
	}
}

func TestCommitItems_Empty(t *testing.T) {
	require.Empty(t, commitItems(nil, time.Now()))
}
