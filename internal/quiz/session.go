// Package quiz drives multiple-choice sessions where missed questions are
// requeued at the tail until answered correctly.
package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// Mode selects where questions come from.
type Mode string

const (
	ModeChallenge Mode = "challenge"
	ModeReview    Mode = "review"
)

// Phase is the coarse session state.
type Phase string

const (
	PhaseStudying Phase = "studying"
	PhaseActive   Phase = "active"
	PhaseSummary  Phase = "summary"
)

// Auto-advance delays after feedback is shown.
const (
	DefaultAnswerDelay   = 2000 * time.Millisecond
	DefaultMasteredDelay = 1200 * time.Millisecond
)

var (
	ErrInvalidQuestion = errors.New("quiz: invalid question")
	ErrEmptySession    = errors.New("quiz: session has no questions")
	ErrNotActive       = errors.New("quiz: session is not active")
	ErrAlreadyAnswered = errors.New("quiz: current question already answered")
	ErrNotAnswered     = errors.New("quiz: current question not answered yet")
	ErrInvalidOption   = errors.New("quiz: option index out of range")
	ErrNotReviewMode   = errors.New("quiz: mastered shortcut is only available in review mode")
	ErrNoSource        = errors.New("quiz: question has no backing record")
)

// Question is one multiple-choice item. CorrectIndex is fixed at construction.
type Question struct {
	Prompt       string               `json:"prompt"`
	Options      []string             `json:"options"`
	CorrectIndex int                  `json:"correct_index"`
	SourceID     *uuid.UUID           `json:"source_id,omitempty"`
	Vocabulary   model.VocabularyItem `json:"vocabulary"`
}

// NewQuestion validates the option set and returns a question.
func NewQuestion(prompt string, options []string, correctIndex int, sourceID *uuid.UUID, vocab model.VocabularyItem) (Question, error) {
	if prompt == "" || len(options) < 2 || correctIndex < 0 || correctIndex >= len(options) {
		return Question{}, ErrInvalidQuestion
	}
	opts := make([]string, len(options))
	copy(opts, options)
	return Question{
		Prompt:       prompt,
		Options:      opts,
		CorrectIndex: correctIndex,
		SourceID:     sourceID,
		Vocabulary:   vocab,
	}, nil
}

// Result is one entry of the append-only answer log.
type Result struct {
	Prompt        string `json:"prompt"`
	WasCorrect    bool   `json:"was_correct"`
	WasAutoMarked bool   `json:"was_auto_marked"`
}

// Outcome describes what a submission did.
type Outcome struct {
	Correct      bool       `json:"correct"`
	CorrectIndex int        `json:"correct_index"`
	Selected     int        `json:"selected"`
	Scored       bool       `json:"scored"`
	Requeued     bool       `json:"requeued"`
	AutoMarked   bool       `json:"auto_marked"`
	Score        int        `json:"score"`
	Term         string     `json:"term"`
	SourceID     *uuid.UUID `json:"source_id,omitempty"`
}

// AdvanceDelay returns how long feedback stays on screen before advancing.
func AdvanceDelay(o Outcome, answerDelay, masteredDelay time.Duration) time.Duration {
	if o.AutoMarked {
		return masteredDelay
	}
	return answerDelay
}

// Session is the state of one quiz. It is serialised whole between requests.
type Session struct {
	ID         uuid.UUID        `json:"id"`
	LearnerID  uuid.UUID        `json:"learner_id"`
	Mode       Mode             `json:"mode"`
	Phase      Phase            `json:"phase"`
	Difficulty model.Difficulty `json:"difficulty"`
	Queue      []Question       `json:"queue"`
	Cursor     int              `json:"cursor"`
	Score      int              `json:"score"`
	Failed     map[string]bool  `json:"failed"`
	Results    []Result         `json:"results"`
	Answered   bool             `json:"answered"`
	Selected   *int             `json:"selected,omitempty"`
	Committed  bool             `json:"committed"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewSession builds a session over questions. Challenge sessions open in the
// studying phase; review sessions are active immediately.
func NewSession(learnerID uuid.UUID, mode Mode, difficulty model.Difficulty, questions []Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptySession
	}
	for _, q := range questions {
		if q.Prompt == "" || len(q.Options) < 2 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, ErrInvalidQuestion
		}
	}
	queue := make([]Question, len(questions))
	copy(queue, questions)

	phase := PhaseActive
	if mode == ModeChallenge {
		phase = PhaseStudying
	}

	return &Session{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		Mode:       mode,
		Phase:      phase,
		Difficulty: difficulty,
		Queue:      queue,
		Failed:     make(map[string]bool),
		Results:    make([]Result, 0, len(questions)),
		CreatedAt:  time.Now(),
	}, nil
}

// Begin moves a studying session into the active phase. It is a no-op for
// sessions that are already active.
func (s *Session) Begin() error {
	switch s.Phase {
	case PhaseStudying:
		s.Phase = PhaseActive
		return nil
	case PhaseActive:
		return nil
	default:
		return ErrNotActive
	}
}

// Current returns the question under the cursor.
func (s *Session) Current() (Question, bool) {
	if s.Phase == PhaseSummary || s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return Question{}, false
	}
	return s.Queue[s.Cursor], true
}

// SubmitAnswer records the first answer for the current occurrence. A miss
// marks the prompt as failed and appends a copy of the question to the queue.
func (s *Session) SubmitAnswer(selected int) (Outcome, error) {
	if s.Phase != PhaseActive {
		return Outcome{}, ErrNotActive
	}
	if s.Answered {
		return Outcome{}, ErrAlreadyAnswered
	}
	q, ok := s.Current()
	if !ok {
		return Outcome{}, ErrNotActive
	}
	if selected < 0 || selected >= len(q.Options) {
		return Outcome{}, ErrInvalidOption
	}

	correct := selected == q.CorrectIndex
	out := Outcome{
		Correct:      correct,
		CorrectIndex: q.CorrectIndex,
		Selected:     selected,
		Term:         q.Prompt,
		SourceID:     q.SourceID,
	}

	if correct {
		if !s.Failed[q.Prompt] {
			s.Score++
			out.Scored = true
		}
	} else {
		s.Failed[q.Prompt] = true
		s.Queue = append(s.Queue, q)
		out.Requeued = true
	}

	s.Results = append(s.Results, Result{Prompt: q.Prompt, WasCorrect: correct})
	s.Answered = true
	s.Selected = &selected
	out.Score = s.Score
	return out, nil
}

// MarkMastered answers the current review question as known. It always scores.
func (s *Session) MarkMastered() (Outcome, error) {
	if s.Mode != ModeReview {
		return Outcome{}, ErrNotReviewMode
	}
	if s.Phase != PhaseActive {
		return Outcome{}, ErrNotActive
	}
	if s.Answered {
		return Outcome{}, ErrAlreadyAnswered
	}
	q, ok := s.Current()
	if !ok {
		return Outcome{}, ErrNotActive
	}
	if q.SourceID == nil {
		return Outcome{}, ErrNoSource
	}

	s.Score++
	s.Results = append(s.Results, Result{Prompt: q.Prompt, WasCorrect: true, WasAutoMarked: true})
	s.Answered = true
	idx := q.CorrectIndex
	s.Selected = &idx

	return Outcome{
		Correct:      true,
		CorrectIndex: q.CorrectIndex,
		Selected:     idx,
		Scored:       true,
		AutoMarked:   true,
		Score:        s.Score,
		Term:         q.Prompt,
		SourceID:     q.SourceID,
	}, nil
}

// Advance moves to the next occurrence. It returns false once the session
// has entered the summary phase.
func (s *Session) Advance() (bool, error) {
	if s.Phase != PhaseActive {
		return false, ErrNotActive
	}
	if !s.Answered {
		return false, ErrNotAnswered
	}
	if s.Cursor >= len(s.Queue)-1 {
		s.Phase = PhaseSummary
		s.Answered = false
		s.Selected = nil
		return false, nil
	}
	s.Cursor++
	s.Answered = false
	s.Selected = nil
	return true, nil
}

// Done reports whether the session reached its summary.
func (s *Session) Done() bool {
	return s.Phase == PhaseSummary
}

// DistinctQuestions returns one question per prompt in order of first
// appearance. Later copies replace earlier ones.
func (s *Session) DistinctQuestions() []Question {
	index := make(map[string]int, len(s.Queue))
	out := make([]Question, 0, len(s.Queue))
	for _, q := range s.Queue {
		if i, ok := index[q.Prompt]; ok {
			out[i] = q
			continue
		}
		index[q.Prompt] = len(out)
		out = append(out, q)
	}
	return out
}

// Missed lists prompts answered incorrectly at least once.
func (s *Session) Missed() []string {
	out := make([]string, 0, len(s.Failed))
	for _, q := range s.DistinctQuestions() {
		if s.Failed[q.Prompt] {
			out = append(out, q.Prompt)
		}
	}
	return out
}
