package content

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	require.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	require.Equal(t, `[1,2]`, StripFences("  ```\n[1,2]```  "))
	require.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
}

func TestDecodeList(t *testing.T) {
	items, err := DecodeList[model.VocabularyItem]("```json\n[{\"word\":\"사과\",\"meaning\":\"苹果\"}]\n```")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "사과", items[0].Word)

	items, err = DecodeList[model.VocabularyItem](`{"words":[{"word":"물","meaning":"水"}]}`)
	require.NoError(t, err)
	require.Equal(t, "물", items[0].Word)

	_, err = DecodeList[model.VocabularyItem]("not json")
	require.ErrorIs(t, err, ErrParse)

	_, err = DecodeList[model.VocabularyItem]("```json\n```")
	require.ErrorIs(t, err, ErrParse)
}

func TestDecodeList_WrapperTakesFirstArrayInOrder(t *testing.T) {
	raw := `{"note":"ok","z_words":[{"word":"물","meaning":"水"}],"a_words":[{"word":"불","meaning":"火"}]}`
	for i := 0; i < 20; i++ {
		items, err := DecodeList[model.VocabularyItem](raw)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "물", items[0].Word)
	}

	items, err := DecodeList[model.VocabularyItem](`{"tags":["a","b"],"words":[{"word":"불","meaning":"火"}]}`)
	require.NoError(t, err)
	require.Equal(t, "불", items[0].Word)

	_, err = DecodeList[model.VocabularyItem](`{"note":"no list here"}`)
	require.ErrorIs(t, err, ErrParse)
	_, err = DecodeList[model.VocabularyItem](`"just a string"`)
	require.ErrorIs(t, err, ErrParse)
}

func TestDecodeObject(t *testing.T) {
	art, err := DecodeObject[model.ArticleData]("```json{\"title_kr\":\"제목\",\"content_kr\":\"가\\n나\"}```")
	require.NoError(t, err)
	require.Equal(t, "제목", art.TitleKR)
	require.Equal(t, []string{"가", "나"}, Paragraphs(art.ContentKR))

	_, err = DecodeObject[model.ArticleData](`{"title_kr":`)
	require.ErrorIs(t, err, ErrParse)
}

func TestBuildChallengeQuestions(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	items := []ChallengeItem{
		{Word: "사과", Meaning: "苹果", Distractors: []string{"香蕉", "梨", "葡萄"}},
		{Word: "물", Meaning: "", Distractors: []string{"火"}},
		{Word: "책", Meaning: "书", Distractors: []string{"书", " "}},
		{Word: "사과", Meaning: "苹果", Distractors: []string{"桃"}},
		{Word: "학교", Meaning: "学校", Distractors: []string{"医院", "医院"}},
	}

	qs, skipped, err := BuildChallengeQuestions(r, items)
	require.NoError(t, err)
	require.Equal(t, 3, skipped)
	require.Len(t, qs, 2)

	for _, q := range qs {
		require.Equal(t, q.Vocabulary.Meaning, q.Options[q.CorrectIndex])
		require.Nil(t, q.SourceID)
	}
	require.Len(t, qs[0].Options, 4)
	require.ElementsMatch(t, []string{"苹果", "香蕉", "梨", "葡萄"}, qs[0].Options)
	require.Len(t, qs[1].Options, 2)
}

func TestBuildChallengeQuestions_NothingUsable(t *testing.T) {
	_, _, err := BuildChallengeQuestions(NewRand(), []ChallengeItem{{Word: "x"}})
	require.ErrorIs(t, err, ErrParse)
}

func TestShuffledOptionsTracksAnswer(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		opts, idx := shuffledOptions(r, "answer", []string{"a", "b", "c"})
		require.Equal(t, "answer", opts[idx])
	}
}

func TestReviewCount(t *testing.T) {
	require.Equal(t, 7, ReviewCount(7, 3))
	require.Equal(t, 12, ReviewCount(12, 0))
	require.Equal(t, 10, ReviewCount(12, 10))
	require.Equal(t, 12, ReviewCount(12, 50))
}

func record(word, meaning string) model.VocabularyRecord {
	return model.VocabularyRecord{
		ID:     uuid.New(),
		Data:   model.VocabularyItem{Word: word, Meaning: meaning},
		Status: model.StatusLearning,
	}
}

func TestBuildReviewQuestions_Decoys(t *testing.T) {
	a := record("사과", "苹果")
	b := record("물", "水")
	c := record("불", "火")
	d := record("책", "书")
	e := record("집", "家")

	qs := BuildReviewQuestions(rand.New(rand.NewSource(3)), []model.VocabularyRecord{a, b}, []model.VocabularyRecord{a, b, c, d, e}, 0)
	require.Len(t, qs, 2)
	for _, q := range qs {
		require.NotNil(t, q.SourceID)
		require.Len(t, q.Options, 4)
		require.Equal(t, q.Vocabulary.Meaning, q.Options[q.CorrectIndex])
		count := 0
		for _, o := range q.Options {
			if o == q.Vocabulary.Meaning {
				count++
			}
		}
		require.Equal(t, 1, count)
	}
}

func TestBuildReviewQuestions_Fillers(t *testing.T) {
	a := record("사과", "苹果")

	qs := BuildReviewQuestions(NewRand(), []model.VocabularyRecord{a}, []model.VocabularyRecord{a}, 5)
	require.Len(t, qs, 1)
	require.Equal(t, a.ID, *qs[0].SourceID)
	require.ElementsMatch(t, []string{"苹果", "其他含义", "不正确的选项", "其他含义"}, qs[0].Options)
}

func TestCleanForSpeech(t *testing.T) {
	in := "# 제목\n**안녕하세요**는 *你好* 的意思。\n`감사합니다` [링크](http://x.y) ```code\nblock```"
	require.Equal(t, "제목 안녕하세요는 你好 的意思。 감사합니다 링크", CleanForSpeech(in))

	long := strings.Repeat("가", 250) + "." + strings.Repeat("나", 100)
	out := CleanForSpeech(long)
	require.Equal(t, 251, len([]rune(out)))
	require.True(t, strings.HasSuffix(out, "."))

	early := strings.Repeat("가", 100) + "." + strings.Repeat("나", 300)
	out = CleanForSpeech(early)
	require.Equal(t, SpeechMaxRunes, len([]rune(out)))
}

func TestRecommend(t *testing.T) {
	require.Equal(t, "intro_hangul", Recommend(nil).ID)
	require.Equal(t, model.DifficultyIntermediate, Recommend(map[model.Difficulty]int{model.DifficultyBeginner: 31}).Difficulty)
	require.Equal(t, model.DifficultyBeginner, Recommend(map[model.Difficulty]int{model.DifficultyIntermediate: 99}).Difficulty)
	require.Equal(t, "business_email", Recommend(map[model.Difficulty]int{
		model.DifficultyBeginner:     31,
		model.DifficultyIntermediate: 41,
	}).ID)
}

func TestCourses(t *testing.T) {
	require.Len(t, Courses, 24)
	per := map[model.Difficulty]int{}
	ids := map[string]bool{}
	for _, c := range Courses {
		per[c.Difficulty]++
		require.False(t, ids[c.ID])
		ids[c.ID] = true
		require.NotEmpty(t, c.SystemPrompt)
		require.NotEmpty(t, c.InitialMessage)
	}
	require.Equal(t, 8, per[model.DifficultyBeginner])
	require.Equal(t, 8, per[model.DifficultyIntermediate])
	require.Equal(t, 8, per[model.DifficultyAdvanced])

	_, ok := CourseByID("kdrama_chat")
	require.True(t, ok)
	_, ok = CourseByID("nope")
	require.False(t, ok)
}

func TestTutorReplyPromptWindow(t *testing.T) {
	course, _ := CourseByID("self_intro")
	history := make([]model.ChatMessage, 0, 15)
	for i := 0; i < 15; i++ {
		role := model.ChatRoleAI
		if i%2 == 1 {
			role = model.ChatRoleUser
		}
		history = append(history, model.ChatMessage{Role: role, Content: string(rune('a' + i))})
	}

	p := TutorReplyPrompt(course, history, "저는 민수입니다")
	require.True(t, strings.HasPrefix(p.System, course.SystemPrompt))
	require.Contains(t, p.System, "STRICT INSTRUCTIONS")
	require.NotContains(t, p.User, "Tutor: a\n")
	require.Contains(t, p.User, "Student: f\n")
	require.Contains(t, p.User, "[Current Student Input]\n저는 민수입니다")
	require.False(t, p.Structured)
}
