package audio

import (
	"bytes"
	"net/http"
)

// MemorySink collects rendered audio in memory.
type MemorySink struct {
	bytes.Buffer
	ContentType string
}

func (s *MemorySink) SetContentType(contentType string) { s.ContentType = contentType }

// ResponseSink streams rendered audio to an HTTP response.
type ResponseSink struct {
	w           http.ResponseWriter
	wroteHeader bool
}

// NewResponseSink wraps w. The content type is applied before the first write.
func NewResponseSink(w http.ResponseWriter) *ResponseSink {
	return &ResponseSink{w: w}
}

func (s *ResponseSink) SetContentType(contentType string) {
	if s.wroteHeader {
		return
	}
	s.w.Header().Set("Content-Type", contentType)
}

func (s *ResponseSink) Write(p []byte) (int, error) {
	if !s.wroteHeader {
		s.w.WriteHeader(http.StatusOK)
		s.wroteHeader = true
	}
	return s.w.Write(p)
}

// Written reports whether any audio reached the client.
func (s *ResponseSink) Written() bool { return s.wroteHeader }
