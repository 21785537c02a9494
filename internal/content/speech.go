package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Speech text limits, in runes.
const (
	SpeechMaxRunes      = 290
	SpeechMinCutAtPunct = 200
)

var (
	reBold       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.*?)\*`)
	reUnderline  = regexp.MustCompile(`__(.*?)__`)
	reHeading    = regexp.MustCompile(`#{1,6}\s`)
	reCodeBlock  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reSpace      = regexp.MustCompile(`\s+`)
)

// CleanForSpeech strips markdown from a tutor reply and shortens it for
// synthesis, cutting at the last sentence end when one falls late enough.
func CleanForSpeech(text string) string {
	s := reCodeBlock.ReplaceAllString(text, "")
	s = reBold.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reUnderline.ReplaceAllString(s, "$1")
	s = reHeading.ReplaceAllString(s, "")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(reSpace.ReplaceAllString(s, " "))

	if utf8.RuneCountInString(s) <= SpeechMaxRunes {
		return s
	}

	runes := []rune(s)[:SpeechMaxRunes]
	last := -1
	for i, r := range runes {
		switch r {
		case '.', '?', '!', '。', '？', '！':
			last = i
		}
	}
	if last > SpeechMinCutAtPunct {
		return string(runes[:last+1])
	}
	return string(runes)
}

// Paragraphs splits article content on newlines and drops blank lines.
func Paragraphs(content string) []string {
	parts := strings.Split(content, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
