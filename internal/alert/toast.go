package alert

import (
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays up when no duration is given
const DefaultDuration = 3 * time.Second

// Severity selects a toast's style and icon
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Style is the fixed presentation of a severity
type Style struct {
	Class string `json:"class"`
	Icon  string `json:"icon"`
}

var styles = map[Severity]Style{
	Success: {Class: "alert-success", Icon: "check_circle"},
	Error:   {Class: "alert-error", Icon: "error"},
	Warning: {Class: "alert-warning", Icon: "warning"},
	Info:    {Class: "alert-info", Icon: "info"},
}

// Valid reports whether s is one of the four severities
func (s Severity) Valid() bool {
	_, ok := styles[s]
	return ok
}

// Style returns the presentation for s; unknown severities render as Info
func (s Severity) Style() Style {
	if style, ok := styles[s]; ok {
		return style
	}
	return styles[Info]
}

// Toast is a dismissible message that hides itself after its duration
type Toast struct {
	ID       string
	Severity Severity
	Message  string
	Duration time.Duration
	OpenedAt time.Time

	mu        sync.Mutex
	open      bool
	timer     *time.Timer
	onDismiss func()
}

// Open shows a toast immediately and schedules it to hide after duration.
// onDismiss runs exactly once, on expiry or on Dismiss, whichever comes first.
func Open(id string, severity Severity, message string, duration time.Duration, onDismiss func()) *Toast {
	if duration <= 0 {
		duration = DefaultDuration
	}
	t := &Toast{
		ID:        id,
		Severity:  severity,
		Message:   message,
		Duration:  duration,
		OpenedAt:  time.Now(),
		open:      true,
		onDismiss: onDismiss,
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(duration, t.Dismiss)
	t.mu.Unlock()
	return t
}

// Visible reports whether the toast is still showing
func (t *Toast) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Dismiss hides the toast and fires the dismiss callback if it is still open
func (t *Toast) Dismiss() {
	t.mu.Lock()
	if !t.open {
		t.mu.Unlock()
		return
	}
	t.open = false
	t.timer.Stop()
	cb := t.onDismiss
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Close hides the toast and stops its timer without firing the callback
func (t *Toast) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	t.timer.Stop()
}
