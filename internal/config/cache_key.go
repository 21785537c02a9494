package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizSessionKey returns the cache key for a quiz session snapshot
func (r *CacheKeyStruct) QuizSessionKey(sessionID string) string {
	return fmt.Sprintf("quiz:%s:state", sessionID)
}

// ReadingParagraphAudioKey returns the audio cache key for one paragraph of an article
func (r *CacheKeyStruct) ReadingParagraphAudioKey(articleID string, index int) string {
	return fmt.Sprintf("audio:reading:%s:%d", articleID, index)
}

// ListeningAudioKey returns the audio cache key for a listening script
func (r *CacheKeyStruct) ListeningAudioKey(itemID string) string {
	return fmt.Sprintf("audio:listening:%s", itemID)
}

// TutorMessageAudioKey returns the audio cache key for a tutor chat message
func (r *CacheKeyStruct) TutorMessageAudioKey(messageID string) string {
	return fmt.Sprintf("audio:tutor:%s", messageID)
}

// TermAudioKey returns the audio cache key for a single pronounced term,
// scoped by speech provider because voices differ.
func (r *CacheKeyStruct) TermAudioKey(ttsProvider, term string) string {
	return fmt.Sprintf("audio:term:%s:%s", ttsProvider, term)
}

var CacheKey = NewCacheKeyStruct()
