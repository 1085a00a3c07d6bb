package shopper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

// Event records a change in the shopper bound to a client session,
// including the first time a session is seen. Previous is uuid.Nil in
// that case.
type Event struct {
	SessionID string
	Previous  uuid.UUID
	Current   uuid.UUID
	At        time.Time
}

// Watcher tracks which shopper each client session is authenticated
// as and pushes an Event to subscribers whenever that binding changes.
// Auth middleware feeds it one observation per request; there is no
// periodic re-checking.
type Watcher struct {
	mu   sync.Mutex
	seen map[string]uuid.UUID
	subs map[int]chan Event
	next int
	now  func() time.Time
	logg *logger.Logger
}

// NewWatcher builds an identity watcher.
func NewWatcher(logg *logger.Logger) (*Watcher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Watcher{
		seen: map[string]uuid.UUID{},
		subs: map[int]chan Event{},
		now:  time.Now,
		logg: logg,
	}, nil
}

// Subscribe registers a listener and returns its event channel along
// with a cancel function. Events are delivered best-effort; a listener
// that stops draining loses events rather than stalling requests.
func (w *Watcher) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	w.mu.Lock()
	id := w.next
	w.next++
	w.subs[id] = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

// Observe records that the session is currently authenticated as the
// given shopper. A changed binding is published to all subscribers.
func (w *Watcher) Observe(ctx context.Context, sessionID string, userID uuid.UUID) {
	if sessionID == "" || userID == uuid.Nil {
		return
	}

	w.mu.Lock()
	previous, known := w.seen[sessionID]
	if known && previous == userID {
		w.mu.Unlock()
		return
	}
	w.seen[sessionID] = userID
	event := Event{
		SessionID: sessionID,
		Previous:  previous,
		Current:   userID,
		At:        w.now(),
	}
	for _, ch := range w.subs {
		select {
		case ch <- event:
		default:
			w.logg.Warn(ctx, "dropping identity change event for slow subscriber")
		}
	}
	w.mu.Unlock()
}

// Forget drops the binding for a session, typically on logout, so the
// next authenticated request is treated as a fresh binding.
func (w *Watcher) Forget(sessionID string) {
	w.mu.Lock()
	delete(w.seen, sessionID)
	w.mu.Unlock()
}
