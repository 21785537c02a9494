package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/repository"
)

const (
	CommitBatchSize    = 20
	CommitBatchTimeout = 2 * time.Second
	CommitPollTimeout  = 1 * time.Second
)

// CommitWorker persists the words of finished challenge sessions as learning cards.
type CommitWorker struct {
	vocab *repository.VocabularyRepository
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewCommitWorker(vocab *repository.VocabularyRepository, rdb *redis.Client, log zerolog.Logger) *CommitWorker {
	return &CommitWorker{
		vocab: vocab,
		rdb:   rdb,
		log:   log.With().Str("component", "commit_worker").Logger(),
	}
}

func (w *CommitWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CommitWorker started")

	batch := make([]*CommitJob, 0, CommitBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= CommitBatchSize || time.Since(lastFlush) >= CommitBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining commits...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, CommitPollTimeout, config.WorkerKey.PersistVocabularyQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job CommitJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &job)
		}
	}
}

func (w *CommitWorker) flushSafe(ctx context.Context, batch []*CommitJob) {
	if len(batch) == 0 {
		return
	}

	items := commitItems(batch, time.Now())
	written, err := w.vocab.InsertBatch(ctx, items)
	if err == nil {
		w.log.Debug().Int("jobs", len(batch)).Int64("written", written).Msg("challenge words committed")
		return
	}

	w.log.Warn().Err(err).Msg("bulk vocabulary insert failed, using fallback")
	for _, job := range batch {
		if err := w.persistSingle(ctx, job); err != nil {
			w.log.Error().Err(err).Str("session_id", job.SessionID.String()).Msg("persistSingle failed, requeueing")
			raw, _ := json.Marshal(job)
			w.rdb.RPush(ctx, config.WorkerKey.PersistVocabularyQueue, raw)
		}
	}
}

func (w *CommitWorker) persistSingle(ctx context.Context, job *CommitJob) error {
	for _, item := range commitItems([]*CommitJob{job}, time.Now()) {
		item := item
		if err := w.vocab.Create(ctx, &item); err != nil && !errors.Is(err, repository.ErrDuplicateWord) {
			return err
		}
	}
	return nil
}

// commitItems flattens jobs into learning records. Within a learner, a word
// seen in several jobs is kept once.
func commitItems(batch []*CommitJob, now time.Time) []model.VocabularyRecord {
	type key struct {
		learner string
		word    string
	}
	seen := make(map[key]bool)
	items := make([]model.VocabularyRecord, 0, len(batch)*10)

	for _, job := range batch {
		for _, word := range job.Words {
			k := key{job.LearnerID.String(), word.Word}
			if word.Word == "" || seen[k] {
				continue
			}
			seen[k] = true
			items = append(items, model.VocabularyRecord{
				LearnerID:  job.LearnerID,
				Data:       word,
				Difficulty: job.Difficulty,
				Status:     model.StatusLearning,
				CreatedAt:  now,
			})
		}
	}
	return items
}
