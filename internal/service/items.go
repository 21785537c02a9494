package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// ItemStore is the saved_items access shared by every content kind.
type ItemStore[T any] interface {
	List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.SavedItem[T], error)
	GetByID(ctx context.Context, learnerID, id uuid.UUID) (*model.SavedItem[T], error)
	Create(ctx context.Context, item *model.SavedItem[T]) error
	UpdateStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) error
	Delete(ctx context.Context, learnerID, id uuid.UUID) error
}

// VocabularyStore adds word lookups to the vocabulary item store.
type VocabularyStore interface {
	ItemStore[model.VocabularyItem]
	ListRecentWords(ctx context.Context, learnerID uuid.UUID, limit int) ([]string, error)
	CountByStatus(ctx context.Context, learnerID uuid.UUID) (map[model.LearningStatus]int, error)
}

// setItemStatus applies status to an item, toggling when status is empty.
func setItemStatus[T any](ctx context.Context, store ItemStore[T], learnerID, id uuid.UUID, status model.LearningStatus) (*model.SavedItem[T], error) {
	item, err := store.GetByID(ctx, learnerID, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = item.Status.Toggle()
	}
	if err := store.UpdateStatus(ctx, learnerID, id, status); err != nil {
		return nil, err
	}
	item.Status = status
	return item, nil
}
