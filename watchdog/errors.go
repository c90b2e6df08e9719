package watchdog

import (
	"errors"
	"fmt"
)

// Kind classifies the errors that abort a run.
type Kind string

const (
	KindConfig    Kind = "config"
	KindBootTime  Kind = "boot-time"
	KindFeedFetch Kind = "feed-fetch"
	KindReboot    Kind = "reboot"
)

// Error is a fatal error: the run stops and no reboot decision is made from it.
type Error struct {
	Kind Kind
	Err  error
}

func (err *Error) Error() string {
	return fmt.Sprintf("%v: %v", err.Kind, err.Err)
}

func (err *Error) Unwrap() error {
	return err.Err
}

func fatal(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// ConfigError wraps a configuration loading failure.
func ConfigError(err error) error {
	return fatal(KindConfig, err)
}

// ErrorKind returns the kind of a fatal error, or "" for any other error.
func ErrorKind(err error) Kind {
	var watchdogErr *Error

	if errors.As(err, &watchdogErr) {
		return watchdogErr.Kind
	}

	return ""
}
