package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned by adapters before any network attempt.
	ErrMissingCredential = errors.New("API Key is missing")
	// ErrEmptyTopic rejects a submission whose topic is blank after trimming.
	ErrEmptyTopic = errors.New("topic is required")
	// ErrBusy rejects a submission while a cycle is already loading.
	ErrBusy = errors.New("a search is already in progress")
	// ErrImageUnsupported means the configured provider has no image model.
	ErrImageUnsupported = errors.New("image generation not supported by provider")
)

// ConfigError 表示本地配置缺失（例如没有 API Key）。
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UpstreamError wraps a failed or malformed call to the AI service.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// classify maps an adapter error onto ConfigError or UpstreamError.
func classify(op string, err error) error {
	if errors.Is(err, ErrMissingCredential) {
		return &ConfigError{Err: err}
	}
	return &UpstreamError{Op: op, Err: err}
}
