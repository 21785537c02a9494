package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// TutorRepository stores chat sessions as whole snapshots; the last write wins.
type TutorRepository struct {
	pool *pgxpool.Pool
}

func NewTutorRepository(pool *pgxpool.Pool) *TutorRepository {
	return &TutorRepository{pool: pool}
}

func scanChatSession(row pgx.Row) (*model.ChatSession, error) {
	s := &model.ChatSession{}
	var raw []byte
	if err := row.Scan(&s.LearnerID, &s.CourseID, &raw, &s.Summary, &s.LastUpdated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.Messages); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the learner's session for a course.
func (r *TutorRepository) Get(ctx context.Context, learnerID uuid.UUID, courseID string) (*model.ChatSession, error) {
	s, err := scanChatSession(r.pool.QueryRow(ctx,
		`SELECT learner_id, course_id, messages, summary, last_updated
		 FROM tutor_sessions WHERE learner_id = $1 AND course_id = $2`,
		learnerID, courseID))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	return s, err
}

// List returns every session of the learner, most recently active first.
func (r *TutorRepository) List(ctx context.Context, learnerID uuid.UUID) ([]model.ChatSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT learner_id, course_id, messages, summary, last_updated
		 FROM tutor_sessions WHERE learner_id = $1 ORDER BY last_updated DESC`,
		learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]model.ChatSession, 0)
	for rows.Next() {
		s, err := scanChatSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Save upserts the full session snapshot.
func (r *TutorRepository) Save(ctx context.Context, s *model.ChatSession) error {
	raw, err := json.Marshal(s.Messages)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO tutor_sessions (learner_id, course_id, messages, summary, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (learner_id, course_id) DO UPDATE
		 SET messages = EXCLUDED.messages, summary = EXCLUDED.summary, last_updated = EXCLUDED.last_updated`,
		s.LearnerID, s.CourseID, raw, s.Summary, s.LastUpdated)
	return err
}

// Delete removes a session.
func (r *TutorRepository) Delete(ctx context.Context, learnerID uuid.UUID, courseID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tutor_sessions WHERE learner_id = $1 AND course_id = $2`, learnerID, courseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
