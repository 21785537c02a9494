package provider

import (
	"errors"
	"fmt"
)

// Kind classifies provider failures for the HTTP boundary.
type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindProvider  Kind = "provider"
	KindParse     Kind = "parse"
)

const maxErrorBody = 2048

// Error is returned by every provider client. Nothing is retried.
type Error struct {
	Kind     Kind
	Provider string
	Status   int
	Body     string
	Hint     string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return fmt.Sprintf("%s: configuration: %v", e.Provider, e.Err)
	case KindTransport:
		return fmt.Sprintf("%s: request failed: %s: %v", e.Provider, e.Hint, e.Err)
	case KindProvider:
		return fmt.Sprintf("%s: http %d: %s", e.Provider, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusCode returns the upstream status, or 0 when no response arrived.
func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// KindOf extracts the failure kind from a wrapped provider error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func configError(provider, msg string) *Error {
	return &Error{Kind: KindConfig, Provider: provider, Err: errors.New(msg)}
}

func transportError(provider string, err error) *Error {
	return &Error{
		Kind:     KindTransport,
		Provider: provider,
		Hint:     provider + " 请求失败: 可能是网络连接问题或服务暂时不可达",
		Err:      err,
	}
}

func statusError(provider string, status int, body []byte) *Error {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return &Error{
		Kind:     KindProvider,
		Provider: provider,
		Status:   status,
		Body:     b,
		Err:      fmt.Errorf("unexpected status %d", status),
	}
}

func parseError(provider string, err error) *Error {
	return &Error{Kind: KindParse, Provider: provider, Err: err}
}
