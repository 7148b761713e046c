// Package notify holds the in-process announcement queue used for advisory,
// non-blocking user notices (zone detection, mismatch warnings). It is an
// injected service with an explicit lifecycle so tests can run isolated
// instances.
package notify

import (
	"sync"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
)

// Kind classifies an announcement.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Announcement is a single queued notice.
type Announcement struct {
	Kind    Kind
	Message i18n.Message
}

// Queue accumulates announcements until drained.
type Queue struct {
	mu      sync.Mutex
	pending []Announcement
	seen    map[string]struct{}
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]struct{})}
}

// Push appends an announcement.
func (q *Queue) Push(kind Kind, msg i18n.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, Announcement{Kind: kind, Message: msg})
}

// PushOnce appends an announcement at most once per key for the lifetime of
// the queue. Used for one-time notices such as "zone detected".
func (q *Queue) PushOnce(key string, kind Kind, msg i18n.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[key]; ok {
		return
	}
	q.seen[key] = struct{}{}
	q.pending = append(q.pending, Announcement{Kind: kind, Message: msg})
}

// Drain returns and clears all pending announcements.
func (q *Queue) Drain() []Announcement {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Reset clears pending announcements and the one-time keys.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	q.seen = make(map[string]struct{})
}
