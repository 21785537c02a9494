package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/hanyu-backend/internal/model"
)

// CommitJob carries the distinct terms of a finished challenge session.
type CommitJob struct {
	LearnerID  uuid.UUID              `json:"learner_id"`
	SessionID  uuid.UUID              `json:"session_id"`
	Difficulty model.Difficulty       `json:"difficulty"`
	Words      []model.VocabularyItem `json:"words"`
}

// ResultJob is one entry of a session's answer log.
type ResultJob struct {
	LearnerID     uuid.UUID `json:"learner_id"`
	SessionID     uuid.UUID `json:"session_id"`
	Mode          string    `json:"mode"`
	Seq           int       `json:"seq"`
	Prompt        string    `json:"prompt"`
	WasCorrect    bool      `json:"was_correct"`
	WasAutoMarked bool      `json:"was_auto_marked"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// RedisQueue pushes JSON jobs onto Redis lists consumed by the workers.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Push appends v to the named list.
func (q *RedisQueue) Push(ctx context.Context, queue string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, queue, raw).Err()
}
