package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/database"
	"github.com/stemsi/hanyu-backend/internal/logger"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/repository"
)

const seedBatchSize = 200

// Seeds a learner's vocabulary from a JSON array of word cards:
//
//	seed-vocabulary -email a@b.c -file words.json -difficulty 初级
func main() {
	var (
		email      string
		file       string
		difficulty string
		learned    bool
	)
	flag.StringVar(&email, "email", "", "Learner email")
	flag.StringVar(&file, "file", "", "JSON file with [{word, pronunciation, meaning, example_kr, example_cn}]")
	flag.StringVar(&difficulty, "difficulty", string(model.DifficultyBeginner), "初级, 中级 or 高级")
	flag.BoolVar(&learned, "learned", false, "Import as learned instead of learning")
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "seed_vocabulary")

	level := model.Difficulty(difficulty)
	if email == "" || file == "" || !level.Valid() {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read seed file")
	}
	var words []model.VocabularyItem
	if err := json.Unmarshal(raw, &words); err != nil {
		log.Fatal().Err(err).Msg("Seed file is not a JSON array of word cards")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	learner, err := repository.NewLearnerRepository(pool).GetByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Learner not found")
	}
	vocab := repository.NewVocabularyRepository(pool)

	status := model.StatusLearning
	if learned {
		status = model.StatusLearned
	}

	records := make([]model.VocabularyRecord, 0, len(words))
	now := time.Now()
	skipped := 0
	for i, w := range words {
		w.Word = strings.TrimSpace(w.Word)
		if w.Word == "" || strings.TrimSpace(w.Meaning) == "" {
			skipped++
			continue
		}
		records = append(records, model.VocabularyRecord{
			LearnerID:  learner.ID,
			Data:       w,
			Difficulty: level,
			Status:     status,
			// Keep file order when listed newest first.
			CreatedAt: now.Add(-time.Duration(i) * time.Millisecond),
		})
	}

	var inserted int64
	for start := 0; start < len(records); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(records) {
			end = len(records)
		}
		n, err := vocab.InsertBatch(ctx, records[start:end])
		if err != nil {
			log.Fatal().Err(err).Int("offset", start).Msg("Batch insert failed")
		}
		inserted += n
	}

	fmt.Printf("Seed completed: %d inserted, %d already saved, %d skipped as incomplete.\n",
		inserted, int64(len(records))-inserted, skipped)
}
