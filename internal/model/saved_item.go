package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty is the learner-facing level label. Values are stored as shown.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "初级"
	DifficultyIntermediate Difficulty = "中级"
	DifficultyAdvanced     Difficulty = "高级"
)

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// LearningStatus enumerates the review state of a saved item.
type LearningStatus string

const (
	StatusLearning LearningStatus = "learning"
	StatusLearned  LearningStatus = "learned"
)

// Toggle flips learning <-> learned.
func (s LearningStatus) Toggle() LearningStatus {
	if s == StatusLearning {
		return StatusLearned
	}
	return StatusLearning
}

// ItemKind discriminates rows of the saved_items table.
type ItemKind string

const (
	KindVocabulary ItemKind = "vocabulary"
	KindArticle    ItemKind = "article"
	KindListening  ItemKind = "listening"
)

// SavedItem wraps generated content with its review metadata.
type SavedItem[T any] struct {
	ID         uuid.UUID      `json:"id"`
	LearnerID  uuid.UUID      `json:"-"`
	Data       T              `json:"data"`
	Difficulty Difficulty     `json:"difficulty"`
	Status     LearningStatus `json:"status"`
	CreatedAt  time.Time      `json:"timestamp"`
}

// VocabularyItem is a single word card.
type VocabularyItem struct {
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Meaning       string `json:"meaning"`
	ExampleKR     string `json:"example_kr"`
	ExampleCN     string `json:"example_cn"`
}

// ArticleData is a generated reading passage. Paragraphs are separated by newlines.
type ArticleData struct {
	TitleKR   string           `json:"title_kr"`
	TitleCN   string           `json:"title_cn"`
	ContentKR string           `json:"content_kr"`
	ContentCN string           `json:"content_cn"`
	KeyWords  []VocabularyItem `json:"key_words"`
}

// ListeningData is a generated A/B dialogue with a comprehension question.
type ListeningData struct {
	ScriptKR   string `json:"script_kr"`
	ScriptCN   string `json:"script_cn"`
	QuestionCN string `json:"question_cn"`
	AnswerCN   string `json:"answer_cn"`
}

type (
	VocabularyRecord = SavedItem[VocabularyItem]
	ArticleRecord    = SavedItem[ArticleData]
	ListeningRecord  = SavedItem[ListeningData]
)

// GenerateVocabularyRequest asks for a fresh list of word cards.
type GenerateVocabularyRequest struct {
	Topic      string     `json:"topic" binding:"required,min=1,max=100"`
	Difficulty Difficulty `json:"difficulty" binding:"required,difficulty"`
}

// GenerateArticleRequest asks for a new reading passage.
type GenerateArticleRequest struct {
	Topic      string     `json:"topic" binding:"required,min=1,max=200"`
	Difficulty Difficulty `json:"difficulty" binding:"required,difficulty"`
}

// GenerateListeningRequest asks for a new listening dialogue. Context is optional.
type GenerateListeningRequest struct {
	Context    string     `json:"context" binding:"max=200"`
	Difficulty Difficulty `json:"difficulty" binding:"required,difficulty"`
}

// UpdateStatusRequest sets an explicit status; an empty body toggles.
type UpdateStatusRequest struct {
	Status LearningStatus `json:"status" binding:"omitempty,oneof=learning learned"`
}
