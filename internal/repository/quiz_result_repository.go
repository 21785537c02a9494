package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// QuizResultRepository reads the persisted answer log.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

func NewQuizResultRepository(pool *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{pool: pool}
}

// ListRecent returns the learner's latest answer events.
func (r *QuizResultRepository) ListRecent(ctx context.Context, learnerID uuid.UUID, limit int) ([]model.QuizResultRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, mode, seq, prompt, was_correct, was_auto_marked, answered_at
		 FROM quiz_results WHERE learner_id = $1
		 ORDER BY answered_at DESC, seq DESC
		 LIMIT $2`,
		learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.QuizResultRecord, 0, limit)
	for rows.Next() {
		var rec model.QuizResultRecord
		if err := rows.Scan(&rec.SessionID, &rec.Mode, &rec.Seq, &rec.Prompt, &rec.WasCorrect, &rec.WasAutoMarked, &rec.AnsweredAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
