package alert

import (
	"strconv"
	"sync"
	"time"
)

// View is the rendered form of a live toast
type View struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Class     string    `json:"class"`
	Icon      string    `json:"icon"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier keeps the toasts currently on screen
type Notifier struct {
	duration time.Duration

	mu     sync.Mutex
	nextID int
	toasts map[string]*Toast
	order  []string
}

// NewNotifier creates a Notifier whose toasts last duration
func NewNotifier(duration time.Duration) *Notifier {
	return &Notifier{
		duration: duration,
		toasts:   make(map[string]*Toast),
	}
}

// Push opens a new toast
func (n *Notifier) Push(severity Severity, message string) *Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := strconv.Itoa(n.nextID)
	t := Open(id, severity, message, n.duration, func() { n.remove(id) })
	n.toasts[id] = t
	n.order = append(n.order, id)
	return t
}

// Active lists visible toasts, oldest first
func (n *Notifier) Active() []View {
	n.mu.Lock()
	defer n.mu.Unlock()

	views := make([]View, 0, len(n.order))
	for _, id := range n.order {
		t := n.toasts[id]
		if !t.Visible() {
			continue
		}
		style := t.Severity.Style()
		views = append(views, View{
			ID:        t.ID,
			Severity:  t.Severity,
			Message:   t.Message,
			Class:     style.Class,
			Icon:      style.Icon,
			ExpiresAt: t.OpenedAt.Add(t.Duration),
		})
	}
	return views
}

// Dismiss closes the toast with id early. It reports whether the toast was live.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	t, ok := n.toasts[id]
	n.mu.Unlock()
	if !ok {
		return false
	}
	t.Dismiss()
	return true
}

// Close stops every pending timer
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, t := range n.toasts {
		t.Close()
	}
	n.toasts = make(map[string]*Toast)
	n.order = nil
}

func (n *Notifier) remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.toasts, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}
