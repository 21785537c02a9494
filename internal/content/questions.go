package content

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/quiz"
)

// Review sampling constants.
const (
	ReviewSmallPool = 10
	ReviewDecoys    = 3
)

// Filler options used when too few saved meanings exist to form decoys.
var reviewFillers = []string{"其他含义", "不正确的选项"}

// ChallengeItem is one generated challenge entry before coercion.
type ChallengeItem struct {
	Word          string   `json:"word"`
	Pronunciation string   `json:"pronunciation"`
	Meaning       string   `json:"meaning"`
	ExampleKR     string   `json:"example_kr"`
	ExampleCN     string   `json:"example_cn"`
	Distractors   []string `json:"distractors"`
}

// NewRand returns a time-seeded source for option shuffling.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle[T any](r *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// shuffledOptions returns distractors plus the answer in random order and
// the index of the answer.
func shuffledOptions(r *rand.Rand, answer string, distractors []string) ([]string, int) {
	options := make([]string, 0, len(distractors)+1)
	options = append(options, distractors...)
	options = append(options, answer)
	correct := len(options) - 1

	for i := len(options) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	}
	return options, correct
}

// BuildChallengeQuestions coerces generated items into questions. Items with
// no word, no meaning or no usable distractor are skipped and counted.
func BuildChallengeQuestions(r *rand.Rand, items []ChallengeItem) ([]quiz.Question, int, error) {
	out := make([]quiz.Question, 0, len(items))
	skipped := 0
	seen := make(map[string]bool, len(items))

	for _, it := range items {
		word := strings.TrimSpace(it.Word)
		meaning := strings.TrimSpace(it.Meaning)
		if word == "" || meaning == "" || seen[word] {
			skipped++
			continue
		}
		distractors := distinctExcluding(it.Distractors, meaning)
		if len(distractors) == 0 {
			skipped++
			continue
		}

		options, correct := shuffledOptions(r, meaning, distractors)
		q, err := quiz.NewQuestion(word, options, correct, nil, model.VocabularyItem{
			Word:          word,
			Pronunciation: it.Pronunciation,
			Meaning:       meaning,
			ExampleKR:     it.ExampleKR,
			ExampleCN:     it.ExampleCN,
		})
		if err != nil {
			skipped++
			continue
		}
		seen[word] = true
		out = append(out, q)
	}

	if len(out) == 0 {
		return nil, skipped, fmt.Errorf("%w: no usable questions", ErrParse)
	}
	return out, skipped, nil
}

// ReviewCount decides how many learning items to review. Fewer than ten
// items are always reviewed in full; requested <= 0 means all.
func ReviewCount(available, requested int) int {
	if available < ReviewSmallPool || requested <= 0 {
		return available
	}
	return min(requested, available)
}

// BuildReviewQuestions samples learning records and pairs each with decoy
// meanings drawn from the rest of the saved pool.
func BuildReviewQuestions(r *rand.Rand, learning, pool []model.VocabularyRecord, requested int) []quiz.Question {
	picked := make([]model.VocabularyRecord, len(learning))
	copy(picked, learning)
	shuffle(r, picked)
	picked = picked[:ReviewCount(len(picked), requested)]

	out := make([]quiz.Question, 0, len(picked))
	for _, item := range picked {
		others := make([]string, 0, len(pool))
		for _, p := range pool {
			if p.ID != item.ID {
				others = append(others, p.Data.Meaning)
			}
		}
		shuffle(r, others)
		decoys := distinctExcluding(others, item.Data.Meaning)
		if len(decoys) > ReviewDecoys {
			decoys = decoys[:ReviewDecoys]
		}
		for len(decoys) < ReviewDecoys {
			decoys = append(decoys, reviewFillers[len(decoys)%2])
		}

		options, correct := shuffledOptions(r, item.Data.Meaning, decoys)
		id := item.ID
		q, err := quiz.NewQuestion(item.Data.Word, options, correct, &id, item.Data)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}

// distinctExcluding trims values and drops blanks, duplicates and exclude.
func distinctExcluding(values []string, exclude string) []string {
	seen := map[string]bool{exclude: true}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
