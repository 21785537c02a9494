package model

import (
	"time"

	"github.com/google/uuid"
)

// StartChallengeRequest starts a quiz on freshly generated words.
type StartChallengeRequest struct {
	Topic      string     `json:"topic" binding:"required,min=1,max=100"`
	Difficulty Difficulty `json:"difficulty" binding:"required,difficulty"`
	Count      int        `json:"count" binding:"omitempty,min=1,max=30"`
}

// StartReviewRequest starts a quiz on saved learning words. Count 0 means all.
type StartReviewRequest struct {
	Count int `json:"count" binding:"omitempty,min=1,max=200"`
}

// AnswerRequest submits an option index for the current question.
type AnswerRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// QuizResultRecord is one persisted answer event.
type QuizResultRecord struct {
	SessionID     uuid.UUID `json:"session_id"`
	Mode          string    `json:"mode"`
	Seq           int       `json:"seq"`
	Prompt        string    `json:"prompt"`
	WasCorrect    bool      `json:"was_correct"`
	WasAutoMarked bool      `json:"was_auto_marked"`
	AnsweredAt    time.Time `json:"answered_at"`
}
