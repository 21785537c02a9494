package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
)

const (
	ResultBatchSize    = 100
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ResultWorker consumes the quiz answer log and appends it to quiz_results.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	buffer := make([]*ResultJob, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping, flushing buffer")
			w.flushSafe(context.Background(), buffer)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistQuizResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var job ResultJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}
			buffer = append(buffer, &job)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*ResultJob) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk result insert failed, using fallback")

		for _, job := range batch {
			if err := w.persistSingle(ctx, job); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(job)
				w.rdb.RPush(ctx, config.WorkerKey.PersistQuizResultsQueue, raw)
			}
		}
	}
}

func (w *ResultWorker) bulkInsert(ctx context.Context, batch []*ResultJob) error {
	n := len(batch)
	sessions := make([]uuid.UUID, n)
	learners := make([]uuid.UUID, n)
	modes := make([]string, n)
	seqs := make([]int, n)
	prompts := make([]string, n)
	corrects := make([]bool, n)
	autos := make([]bool, n)
	answeredAts := make([]time.Time, n)

	for i, j := range batch {
		sessions[i] = j.SessionID
		learners[i] = j.LearnerID
		modes[i] = j.Mode
		seqs[i] = j.Seq
		prompts[i] = j.Prompt
		corrects[i] = j.WasCorrect
		autos[i] = j.WasAutoMarked
		answeredAts[i] = j.AnsweredAt
	}

	_, err := w.pool.Exec(ctx, `
		INSERT INTO quiz_results (session_id, learner_id, mode, seq, prompt, was_correct, was_auto_marked, answered_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::int[],
			$5::text[],
			$6::bool[],
			$7::bool[],
			$8::timestamptz[]
		)
		ON CONFLICT (session_id, seq) DO NOTHING`,
		sessions, learners, modes, seqs, prompts, corrects, autos, answeredAts,
	)
	return err
}

func (w *ResultWorker) persistSingle(ctx context.Context, j *ResultJob) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, learner_id, mode, seq, prompt, was_correct, was_auto_marked, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (session_id, seq) DO NOTHING`,
		j.SessionID, j.LearnerID, j.Mode, j.Seq, j.Prompt, j.WasCorrect, j.WasAutoMarked, j.AnsweredAt,
	)
	return err
}
