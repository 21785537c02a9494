package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// SavedItemRepository stores one kind of generated content in saved_items.
// The payload lives in a JSONB column.
type SavedItemRepository[T any] struct {
	pool *pgxpool.Pool
	kind model.ItemKind
}

// NewSavedItemRepository creates a repository scoped to kind.
func NewSavedItemRepository[T any](pool *pgxpool.Pool, kind model.ItemKind) *SavedItemRepository[T] {
	return &SavedItemRepository[T]{pool: pool, kind: kind}
}

const savedItemColumns = `id, learner_id, data, difficulty, status, created_at`

func scanSavedItem[T any](row pgx.Row) (*model.SavedItem[T], error) {
	item := &model.SavedItem[T]{}
	var raw []byte
	if err := row.Scan(&item.ID, &item.LearnerID, &raw, &item.Difficulty, &item.Status, &item.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &item.Data); err != nil {
		return nil, fmt.Errorf("decode saved item %s: %w", item.ID, err)
	}
	return item, nil
}

// List returns the learner's items, newest first. A nil status returns all.
func (r *SavedItemRepository[T]) List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.SavedItem[T], error) {
	query := `SELECT ` + savedItemColumns + ` FROM saved_items WHERE learner_id = $1 AND kind = $2`
	args := []interface{}{learnerID, r.kind}
	if status != nil {
		query += ` AND status = $3`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SavedItem[T], 0)
	for rows.Next() {
		item, err := scanSavedItem[T](rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByID returns one item owned by the learner.
func (r *SavedItemRepository[T]) GetByID(ctx context.Context, learnerID, id uuid.UUID) (*model.SavedItem[T], error) {
	item, err := scanSavedItem[T](r.pool.QueryRow(ctx,
		`SELECT `+savedItemColumns+` FROM saved_items WHERE id = $1 AND learner_id = $2 AND kind = $3`,
		id, learnerID, r.kind))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	return item, err
}

// Create inserts item, assigning an ID and timestamp when missing.
func (r *SavedItemRepository[T]) Create(ctx context.Context, item *model.SavedItem[T]) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.Status == "" {
		item.Status = model.StatusLearning
	}
	raw, err := json.Marshal(item.Data)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO saved_items (id, learner_id, kind, data, difficulty, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.LearnerID, r.kind, raw, item.Difficulty, item.Status, item.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateWord
	}
	return err
}

// InsertBatch bulk-inserts items with UNNEST, skipping rows that collide with
// an existing unique entry. It returns the number of rows written.
func (r *SavedItemRepository[T]) InsertBatch(ctx context.Context, items []model.SavedItem[T]) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	n := len(items)
	ids := make([]uuid.UUID, n)
	learners := make([]uuid.UUID, n)
	data := make([]string, n)
	levels := make([]string, n)
	statuses := make([]string, n)
	createdAts := make([]time.Time, n)

	now := time.Now()
	for i, it := range items {
		raw, err := json.Marshal(it.Data)
		if err != nil {
			return 0, err
		}
		ids[i] = it.ID
		if ids[i] == uuid.Nil {
			ids[i] = uuid.New()
		}
		learners[i] = it.LearnerID
		data[i] = string(raw)
		levels[i] = string(it.Difficulty)
		statuses[i] = string(it.Status)
		if statuses[i] == "" {
			statuses[i] = string(model.StatusLearning)
		}
		createdAts[i] = it.CreatedAt
		if createdAts[i].IsZero() {
			createdAts[i] = now
		}
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO saved_items (id, learner_id, kind, data, difficulty, status, created_at)
		SELECT u.id, u.learner_id, $7, u.data::jsonb, u.difficulty, u.status, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::timestamptz[]
		) AS u (id, learner_id, data, difficulty, status, created_at)
		ON CONFLICT DO NOTHING`,
		ids, learners, data, levels, statuses, createdAts, r.kind,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus sets the learning status of one item.
func (r *SavedItemRepository[T]) UpdateStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE saved_items SET status = $1 WHERE id = $2 AND learner_id = $3 AND kind = $4`,
		status, id, learnerID, r.kind)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one item.
func (r *SavedItemRepository[T]) Delete(ctx context.Context, learnerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM saved_items WHERE id = $1 AND learner_id = $2 AND kind = $3`,
		id, learnerID, r.kind)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns item counts keyed by status.
func (r *SavedItemRepository[T]) CountByStatus(ctx context.Context, learnerID uuid.UUID) (map[model.LearningStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM saved_items WHERE learner_id = $1 AND kind = $2 GROUP BY status`,
		learnerID, r.kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.LearningStatus]int{model.StatusLearning: 0, model.StatusLearned: 0}
	for rows.Next() {
		var s model.LearningStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
