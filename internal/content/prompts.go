package content

import (
	"fmt"
	"strings"

	"github.com/stemsi/hanyu-backend/internal/model"
)

// Generation limits.
const (
	VocabularyCardCount   = 6
	VocabularyAvoidRecent = 30
	ChallengeAvoidRecent  = 50
	DefaultChallengeCount = 10
	TutorHistoryWindow    = 10
	DefaultListeningTopic = "General Daily Life"
)

// Prompt is a system/user prompt pair.
type Prompt struct {
	System     string
	User       string
	Structured bool
}

func VocabularyListPrompt(topic string, level model.Difficulty, recent []string) Prompt {
	return Prompt{
		System: `You are an expert Korean language teacher for Chinese students.
Generate a JSON response containing an array of 6 vocabulary words.
Format: [{ "word": "Korean Word", "pronunciation": "Romanization", "meaning": "Chinese Meaning", "example_kr": "Korean Sentence", "example_cn": "Chinese Sentence Translation" }]`,
		User: fmt.Sprintf("Topic: %s. Difficulty: %s. Create %d vocabulary cards.\nAvoid these words if possible: %s.\nReturn ONLY valid JSON.",
			topic, level, VocabularyCardCount, strings.Join(recent, ", ")),
		Structured: true,
	}
}

func ChallengePrompt(topic string, level model.Difficulty, count int, existing []string) Prompt {
	return Prompt{
		System: fmt.Sprintf(`You are a Korean quiz generator.
Create %d multiple-choice vocabulary questions.
Each item must have a Korean word, meaning, examples, AND 3 distinct incorrect Chinese meanings (distractors).
Return JSON: [
  {
    "word": "Korean",
    "pronunciation": "Rom",
    "meaning": "Correct Chinese",
    "example_kr": "Ex",
    "example_cn": "Ex CN",
    "distractors": ["Wrong1", "Wrong2", "Wrong3"]
  }
]`, count),
		User: fmt.Sprintf("Topic: %s. Difficulty: %s.\nDO NOT include these words: [%s].\nReturn ONLY valid JSON.",
			topic, level, strings.Join(existing, ", ")),
		Structured: true,
	}
}

func ArticlePrompt(topic string, level model.Difficulty) Prompt {
	return Prompt{
		System: `You are a Korean content creator for language learners.
Create a short article.
Return JSON: {
  "title_kr": "Korean Title",
  "title_cn": "Chinese Title",
  "content_kr": "Korean paragraphs (use \n for breaks)",
  "content_cn": "Chinese translation paragraphs (ensure paragraph count matches Korean)",
  "key_words": [{ "word": "kr", "meaning": "cn" }]
}`,
		User:       fmt.Sprintf("Write an article about %q for %s level learners. Length: approx 150-200 words.", topic, level),
		Structured: true,
	}
}

func ListeningPrompt(context string, level model.Difficulty) Prompt {
	if strings.TrimSpace(context) == "" {
		context = DefaultListeningTopic
	}
	return Prompt{
		System: `You are a Korean language listening test creator.
Generate a conversation (Dialogue) between Person A and Person B suitable for listening practice.

IMPORTANT FORMATTING:
1. In 'script_kr', use "A: " and "B: " prefixes for every line.
2. 'script_cn' must be the line-by-line Chinese translation of 'script_kr', keeping the same line count and order.

Return JSON: {
    "script_kr": "A: ...\nB: ...",
    "script_cn": "A: 你好...\nB: 是的，你好...",
    "question_cn": "A comprehension question in Chinese",
    "answer_cn": "The answer in Chinese"
}`,
		User:       fmt.Sprintf("Context: %s. Difficulty: %s. Length: approx 6-8 turns (about 60-80 words).", context, level),
		Structured: true,
	}
}

const tutorInstructions = `

STRICT INSTRUCTIONS:
1. Maintain the persona.
2. If the user speaks Chinese, explain in Chinese but encourage Korean.
3. Use **bold** for key vocabulary or corrections.
4. IMPORTANT: Keep your response CONCISE (under 350 characters). Do not write extremely long paragraphs.
`

// TutorReplyPrompt frames the latest learner input with recent history.
// history must not include input itself.
func TutorReplyPrompt(course model.TutorCourse, history []model.ChatMessage, input string) Prompt {
	if len(history) > TutorHistoryWindow {
		history = history[len(history)-TutorHistoryWindow:]
	}
	return Prompt{
		System: course.SystemPrompt + tutorInstructions,
		User: fmt.Sprintf("[Conversation History]\n%s\n\n[Current Student Input]\n%s\n\nPlease reply as the Tutor.",
			transcript(history), input),
	}
}

// TutorSummaryPrompt asks for a short performance review of a conversation.
func TutorSummaryPrompt(course model.TutorCourse, history []model.ChatMessage) Prompt {
	return Prompt{
		System: fmt.Sprintf(`You are a Korean teacher reviewing a practice conversation on the topic %q.
Write the review in Chinese. Cover: overall fluency, the most important grammar or vocabulary corrections (use **bold** for Korean expressions), and two concrete suggestions for the next session.
Keep it under 300 characters.`, course.Title),
		User: fmt.Sprintf("[Conversation]\n%s", transcript(history)),
	}
}

func transcript(history []model.ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "Tutor"
		if m.Role == model.ChatRoleUser {
			speaker = "Student"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
