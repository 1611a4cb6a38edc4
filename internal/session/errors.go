package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnavailable        = errors.New("on-device model unavailable")
	ErrDownloadTimeout    = errors.New("model download timed out")
	ErrDownloadStalled    = errors.New("model download stalled")
	ErrDownloadFailed     = errors.New("model download failed")
	ErrActivationRequired = errors.New("user activation required")
	ErrSessionLost        = errors.New("session lost")
	ErrNotReady           = errors.New("session not ready")
	ErrAttemptDiscarded   = errors.New("download attempt discarded")
)

type Kind string

const (
	KindNetwork    Kind = "network"
	KindDisk       Kind = "disk"
	KindPermission Kind = "permission"
	KindTimeout    Kind = "timeout"
	KindStalled    Kind = "stalled"
	KindActivation Kind = "activation"
	KindUnknown    Kind = "unknown"
)

// DownloadError is a classified session creation failure. Err keeps the
// provider's original error for display.
type DownloadError struct {
	Kind Kind
	Err  error
}

func (e *DownloadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("download failed (%s)", e.Kind)
	}
	return fmt.Sprintf("download failed (%s): %v", e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

func (e *DownloadError) Is(target error) bool {
	switch target {
	case ErrDownloadTimeout:
		return e.Kind == KindTimeout
	case ErrDownloadStalled:
		return e.Kind == KindStalled
	case ErrActivationRequired:
		return e.Kind == KindActivation
	case ErrDownloadFailed:
		return e.Kind == KindNetwork || e.Kind == KindDisk || e.Kind == KindPermission || e.Kind == KindUnknown
	}
	return false
}

var kindPatterns = []struct {
	kind     Kind
	patterns []string
}{
	{KindNetwork, []string{"network", "fetch", "connection"}},
	{KindDisk, []string{"disk", "space", "storage"}},
	{KindPermission, []string{"permission", "denied"}},
	{KindTimeout, []string{"timeout", "timed out"}},
	{KindActivation, []string{"gesture", "activation"}},
}

// Classify maps a creation failure onto a DownloadError. Already classified
// errors and the package sentinels keep their kind; anything else is matched
// by substrings of its message and falls back to KindUnknown.
func Classify(err error) *DownloadError {
	if err == nil {
		return nil
	}

	var de *DownloadError
	if errors.As(err, &de) {
		return de
	}

	switch {
	case errors.Is(err, ErrDownloadStalled):
		return &DownloadError{Kind: KindStalled, Err: err}
	case errors.Is(err, ErrDownloadTimeout), errors.Is(err, context.DeadlineExceeded):
		return &DownloadError{Kind: KindTimeout, Err: err}
	case errors.Is(err, ErrActivationRequired):
		return &DownloadError{Kind: KindActivation, Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, kp := range kindPatterns {
		for _, p := range kp.patterns {
			if strings.Contains(msg, p) {
				return &DownloadError{Kind: kp.kind, Err: err}
			}
		}
	}
	return &DownloadError{Kind: KindUnknown, Err: err}
}

// UserMessage returns actionable guidance for err. attempt and maxRetries
// select between the retry hint and the troubleshooting text shown once
// retries are used up.
func UserMessage(err error, attempt, maxRetries int) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnavailable) {
		return "AI is not available on this device."
	}
	if errors.Is(err, ErrSessionLost) {
		return "The AI session was lost. Run the command again to start a new one."
	}

	de := Classify(err)
	retriesLeft := attempt < maxRetries

	var base string
	switch de.Kind {
	case KindNetwork:
		base = "Network error: check your internet connection and try again."
	case KindDisk:
		base = "Insufficient disk space: free up storage space and try again."
	case KindPermission:
		base = "Permission denied: check that local AI features are enabled."
	case KindTimeout:
		base = "Download timeout: the download took too long. Check your connection and try again."
	case KindStalled:
		base = "Download stalled: no progress was reported. Check your connection and try again."
	case KindActivation:
		if retriesLeft {
			return "User action required: run the command again to start the download."
		}
		return "User action required: run the command again directly from a terminal. " +
			"If it keeps failing, check that local AI features are enabled and restart the model service."
	default:
		msg := "unknown error"
		if de.Err != nil {
			msg = de.Err.Error()
		}
		base = fmt.Sprintf("Download failed: %s. Please try again.", msg)
	}

	if retriesLeft {
		return base + " The download will retry the next time you run a command."
	}
	return base + fmt.Sprintf(" Retried %d times. Ensure at least 500MB of free disk space, "+
		"a stable connection and a running model service before trying again.", attempt)
}
