// file: internals/services/notifications/recorder.go
package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Sent is one recorded Notify call.
type Sent struct {
	UserIDs   []uuid.UUID
	Kind      string
	Title     string
	Message   string
	ActionRef string
}

// Recorder is an in-memory Notifier for tests and dry runs.
type Recorder struct {
	mu    sync.Mutex
	calls []Sent
}

var _ Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(_ context.Context, userIDs []uuid.UUID, kind, title, message, actionRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Sent{
		UserIDs:   Dedupe(userIDs),
		Kind:      kind,
		Title:     title,
		Message:   message,
		ActionRef: actionRef,
	})
}

func (r *Recorder) Calls() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.calls))
	copy(out, r.calls)
	return out
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Notify(context.Context, []uuid.UUID, string, string, string, string) {}
