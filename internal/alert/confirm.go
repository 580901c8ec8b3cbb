package alert

import (
	"context"
	"errors"
	"strings"
)

// ErrReasonRequired is returned when a destructive action is confirmed without a reason
var ErrReasonRequired = errors.New("a reason is required")

// Action is the destructive operation a Confirmation guards
type Action func(ctx context.Context, reason string) error

// Confirmation runs its action only once a free-text reason has been typed
type Confirmation struct {
	Title  string
	Prompt string
	action Action
}

// NewConfirmation creates a Confirmation guarding action
func NewConfirmation(title, prompt string, action Action) *Confirmation {
	return &Confirmation{Title: title, Prompt: prompt, action: action}
}

// Confirm invokes the action with the trimmed reason, or returns ErrReasonRequired
func (c *Confirmation) Confirm(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	return c.action(ctx, reason)
}
