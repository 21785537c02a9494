package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/hanyu-backend/internal/model"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// ResultHistory reads the answer log written by the result worker.
type ResultHistory interface {
	ListRecent(ctx context.Context, learnerID uuid.UUID, limit int) ([]model.QuizResultRecord, error)
}

// HistoryStats aggregates a slice of the answer log.
type HistoryStats struct {
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`
	AutoMarked int     `json:"auto_marked"`
	Accuracy   float64 `json:"accuracy"`
}

// QuizHistoryService exposes past quiz answers.
type QuizHistoryService struct {
	results ResultHistory
}

func NewQuizHistoryService(results ResultHistory) *QuizHistoryService {
	return &QuizHistoryService{results: results}
}

// Recent returns the newest answers and their stats. The limit is clamped
// to [1, MaxHistoryLimit].
func (s *QuizHistoryService) Recent(ctx context.Context, learnerID uuid.UUID, limit int) ([]model.QuizResultRecord, HistoryStats, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.results.ListRecent(ctx, learnerID, limit)
	if err != nil {
		return nil, HistoryStats{}, err
	}
	if records == nil {
		records = []model.QuizResultRecord{}
	}
	return records, statsOf(records), nil
}

func statsOf(records []model.QuizResultRecord) HistoryStats {
	var st HistoryStats
	for _, r := range records {
		st.Answered++
		if r.WasCorrect {
			st.Correct++
		}
		if r.WasAutoMarked {
			st.AutoMarked++
		}
	}
	if st.Answered > 0 {
		st.Accuracy = float64(st.Correct) / float64(st.Answered)
	}
	return st
}
