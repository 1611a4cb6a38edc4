package ai

import (
	"context"
	"time"
)

// Activation records a user trigger that permits privileged operations
// such as starting a model download. It is only honoured within Window of
// GrantedAt.
type Activation struct {
	GrantedAt time.Time
	Window    time.Duration
}

// Valid reports whether the activation is still live at now.
func (a Activation) Valid(now time.Time) bool {
	if a.GrantedAt.IsZero() {
		return false
	}
	if a.Window <= 0 {
		return true
	}
	return now.Sub(a.GrantedAt) < a.Window
}

type activationKey struct{}

func WithActivation(ctx context.Context, a Activation) context.Context {
	return context.WithValue(ctx, activationKey{}, a)
}

// ActivationFrom returns the activation carried by ctx, if any.
func ActivationFrom(ctx context.Context) (Activation, bool) {
	a, ok := ctx.Value(activationKey{}).(Activation)
	return a, ok
}
