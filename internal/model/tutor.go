package model

import (
	"time"

	"github.com/google/uuid"
)

// TutorCourse is a built-in conversation scenario.
type TutorCourse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Difficulty     Difficulty `json:"difficulty"`
	Icon           string     `json:"icon"`
	SystemPrompt   string     `json:"-"`
	InitialMessage string     `json:"initial_message"`
}

// ChatRole identifies who wrote a chat message.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

// ChatMessage is one turn of a tutor conversation.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is the full conversation for one course. It is stored and
// replaced as a whole snapshot.
type ChatSession struct {
	LearnerID   uuid.UUID     `json:"-"`
	CourseID    string        `json:"course_id"`
	Messages    []ChatMessage `json:"messages"`
	LastUpdated time.Time     `json:"last_updated"`
	Summary     string        `json:"summary,omitempty"`
}

// SendMessageRequest is a learner chat turn.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}
