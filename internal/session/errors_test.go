package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"fetch", errors.New("Failed to fetch model"), KindNetwork},
		{"connection", errors.New("connection refused"), KindNetwork},
		{"disk", errors.New("Not enough disk space"), KindDisk},
		{"storage", errors.New("storage quota exceeded"), KindDisk},
		{"permission", errors.New("Permission denied by policy"), KindPermission},
		{"timeout text", errors.New("operation timed out"), KindTimeout},
		{"gesture", errors.New("Requires a user gesture"), KindActivation},
		{"activation", errors.New("transient activation expired"), KindActivation},
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"stalled sentinel", fmt.Errorf("wrapped: %w", ErrDownloadStalled), KindStalled},
		{"already classified", &DownloadError{Kind: KindStalled, Err: errors.New("no connection progress")}, KindStalled},
		{"unknown", errors.New("something odd"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.want {
				t.Errorf("Classify(%v).Kind = %v, want %v", tt.err, got.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) && got.Err != tt.err {
				t.Errorf("Classify(%v) dropped the original error", tt.err)
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestDownloadErrorIs(t *testing.T) {
	tests := []struct {
		kind   Kind
		target error
		want   bool
	}{
		{KindNetwork, ErrDownloadFailed, true},
		{KindDisk, ErrDownloadFailed, true},
		{KindPermission, ErrDownloadFailed, true},
		{KindUnknown, ErrDownloadFailed, true},
		{KindNetwork, ErrDownloadTimeout, false},
		{KindTimeout, ErrDownloadTimeout, true},
		{KindStalled, ErrDownloadStalled, true},
		{KindStalled, ErrDownloadFailed, false},
		{KindActivation, ErrActivationRequired, true},
		{KindActivation, ErrDownloadFailed, false},
	}

	for _, tt := range tests {
		err := error(&DownloadError{Kind: tt.kind, Err: errors.New("x")})
		if got := errors.Is(err, tt.target); got != tt.want {
			t.Errorf("errors.Is(%s, %v) = %v, want %v", tt.kind, tt.target, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	network := errors.New("network changed")

	retry := UserMessage(network, 1, 3)
	if !strings.HasPrefix(retry, "Network error") || !strings.Contains(retry, "retry the next time") {
		t.Errorf("retry message = %q", retry)
	}

	exhausted := UserMessage(network, 3, 3)
	if !strings.Contains(exhausted, "Retried 3 times") {
		t.Errorf("exhausted message = %q", exhausted)
	}

	unknown := UserMessage(errors.New("weird failure"), 1, 3)
	if !strings.Contains(unknown, "weird failure") {
		t.Errorf("unknown message lost the raw text: %q", unknown)
	}

	a1 := UserMessage(ErrActivationRequired, 1, 3)
	a3 := UserMessage(ErrActivationRequired, 3, 3)
	if a1 == a3 {
		t.Errorf("activation guidance should differ once retries are used up")
	}

	if UserMessage(nil, 1, 3) != "" {
		t.Error("UserMessage(nil) should be empty")
	}
	if msg := UserMessage(ErrUnavailable, 1, 3); !strings.Contains(msg, "not available") {
		t.Errorf("unavailable message = %q", msg)
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Unknown, Unavailable, true},
		{Unknown, Downloadable, true},
		{Unknown, Ready, true},
		{Unknown, Downloading, false},
		{Downloadable, Downloading, true},
		{Downloading, Downloading, true},
		{Downloading, Preparing, true},
		{Downloading, Failed, true},
		{Downloading, Ready, false},
		{Preparing, Ready, true},
		{Ready, Failed, true},
		{Ready, Downloading, false},
		{Failed, Downloadable, true},
		{Failed, Downloading, true},
		{Failed, Ready, true},
		{Unavailable, Ready, false},
		{Unavailable, Downloadable, false},
	}

	for _, tt := range tests {
		if got := isValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("isValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDownloadAttemptClone(t *testing.T) {
	p := 0.5
	a := DownloadAttempt{Number: 1, Progress: &p}
	c := a.Clone()
	*c.Progress = 0.9
	if *a.Progress != 0.5 {
		t.Errorf("Clone shares progress memory")
	}
}
