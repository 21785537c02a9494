package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// SettingRepository stores per-learner key/value preferences.
type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func (r *SettingRepository) GetAll(ctx context.Context, learnerID uuid.UUID) ([]model.LearnerSetting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, updated_at FROM learner_settings WHERE learner_id = $1 ORDER BY key ASC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]model.LearnerSetting, 0)
	for rows.Next() {
		var s model.LearnerSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// UpsertMany writes all pairs in one transaction. Empty values delete the key.
func (r *SettingRepository) UpsertMany(ctx context.Context, learnerID uuid.UUID, values map[string]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		if value == "" {
			if _, err := tx.Exec(ctx,
				`DELETE FROM learner_settings WHERE learner_id = $1 AND key = $2`, learnerID, key); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO learner_settings (learner_id, key, value, updated_at) VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (learner_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			learnerID, key, value); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
