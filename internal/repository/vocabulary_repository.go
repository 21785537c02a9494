package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// VocabularyRepository adds word-level queries to the saved word cards.
type VocabularyRepository struct {
	*SavedItemRepository[model.VocabularyItem]
}

func NewVocabularyRepository(pool *pgxpool.Pool) *VocabularyRepository {
	return &VocabularyRepository{
		SavedItemRepository: NewSavedItemRepository[model.VocabularyItem](pool, model.KindVocabulary),
	}
}

// ListRecentWords returns the learner's most recently saved words.
func (r *VocabularyRepository) ListRecentWords(ctx context.Context, learnerID uuid.UUID, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data->>'word' FROM saved_items
		 WHERE learner_id = $1 AND kind = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		learnerID, model.KindVocabulary, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]string, 0, limit)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
