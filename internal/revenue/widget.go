package revenue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// OrgResolver yields the organization whose revenue is shown
type OrgResolver interface {
	OrganizationID() (string, error)
}

// Widget holds the revenue shown for the selected date.
//
// Selections are grouped by view, one date picker on one page. Within a view, picking
// another date cancels the fetch of the previous pick. Selections in different views
// never affect each other. Current is the result of the newest selection that was not
// superseded in its own view.
type Widget struct {
	fetcher  Fetcher
	resolver OrgResolver
	now      func() time.Time

	mu        sync.Mutex
	seq       uint64
	published uint64
	views     map[string]*selection
	current   Summary
}

// selection is the in-flight pick of one view
type selection struct {
	seq    uint64
	date   string
	cancel context.CancelFunc
}

// NewWidget creates a Widget showing the zero state for today
func NewWidget(fetcher Fetcher, resolver OrgResolver) *Widget {
	return NewWidgetWithClock(fetcher, resolver, time.Now)
}

// NewWidgetWithClock creates a Widget with a custom clock for testing
func NewWidgetWithClock(fetcher Fetcher, resolver OrgResolver, now func() time.Time) *Widget {
	w := &Widget{
		fetcher:  fetcher,
		resolver: resolver,
		now:      now,
		views:    make(map[string]*selection),
	}
	w.current = Empty(w.Today())
	return w
}

// Today is the default selected date
func (w *Widget) Today() string {
	return w.now().Format(DateLayout)
}

// Current returns the last published summary
func (w *Widget) Current() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Select loads the summary for date (today when empty) on behalf of view. An empty view
// is a one-off load that neither cancels nor can be cancelled.
//
// A newer selection of a different date in the same view cancels this one, which then
// returns the zero state. Otherwise the loaded summary is returned, and published
// unless a newer selection was published first.
func (w *Widget) Select(ctx context.Context, view, date string) Summary {
	if date == "" {
		date = w.Today()
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	if view != "" {
		if prev, ok := w.views[view]; ok && prev.date != date {
			prev.cancel()
		}
		w.views[view] = &selection{seq: seq, date: date, cancel: cancel}
	}
	w.mu.Unlock()
	defer cancel()

	summary := w.load(fetchCtx, date)

	w.mu.Lock()
	defer w.mu.Unlock()
	if view != "" {
		latest, ok := w.views[view]
		switch {
		case ok && latest.seq == seq:
			delete(w.views, view)
		case ok && latest.date != date:
			slog.Debug("Discarding superseded revenue selection", "view", view, "date", date)
			return summary
		}
	}
	if seq > w.published {
		w.published = seq
		w.current = summary
	}
	return summary
}

// load never fails: any error degrades to the zero state
func (w *Widget) load(ctx context.Context, date string) Summary {
	orgID, err := w.resolver.OrganizationID()
	if err != nil {
		slog.Error("Failed to resolve organization for revenue", "error", err)
		return Empty(date)
	}

	records, err := w.fetcher.FetchRecords(ctx, orgID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("Revenue fetch cancelled", "org", orgID, "date", date)
		} else {
			slog.Error("Failed to fetch revenue", "org", orgID, "date", date, "error", err)
		}
		return Empty(date)
	}

	return Summarize(date, records)
}
