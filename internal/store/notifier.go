package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"parley/config"
	"parley/pkg/logger"
)

// EventStream is one subscriber's view of the change feed. Events carries
// matched change events; Down signals feed health: a non-nil error means the
// listener was lost (views should go stale), a nil value means it was
// re-established (views should re-read and clear staleness).
type EventStream interface {
	Events() <-chan Event
	Down() <-chan error
	Close()
}

// Feed hands out event streams filtered by a match predicate.
type Feed interface {
	Subscribe(match func(Event) bool) EventStream
}

// Notifier adapts Postgres LISTEN/NOTIFY into per-subscriber event streams.
// A lost connection is retried with exponential backoff between the
// configured bounds; subscribers are told about both the loss and the
// recovery so they can mark views stale and converge again.
type Notifier struct {
	db       *bun.DB
	scope    Scope
	log      logger.Logger
	retryMin time.Duration
	retryMax time.Duration

	mu   sync.Mutex
	subs map[*subscription]struct{}

	stop chan struct{}
	done chan struct{}
}

func NewNotifier(db *bun.DB, scope Scope, cfg config.SyncConfig, log logger.Logger) *Notifier {
	return &Notifier{
		db:       db,
		scope:    scope,
		log:      log,
		retryMin: cfg.RetryMin,
		retryMax: cfg.RetryMax,
		subs:     make(map[*subscription]struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins listening; it returns immediately. The notifier runs until
// ctx is cancelled or Stop is called.
func (n *Notifier) Start(ctx context.Context) {
	go n.run(ctx)
}

func (n *Notifier) Stop() {
	select {
	case <-n.stop:
	default:
		close(n.stop)
	}
	<-n.done
}

// Subscribe registers a filtered stream. Closing the stream releases only
// that subscriber; in-flight writes and other subscribers are unaffected.
func (n *Notifier) Subscribe(match func(Event) bool) EventStream {
	s := &subscription{
		n:      n,
		match:  match,
		events: make(chan Event, 64),
		down:   make(chan error, 4),
	}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)

	delay := n.retryMin
	for {
		err := n.listenOnce(ctx, &delay)
		if ctx.Err() != nil || stopped(n.stop) {
			return
		}
		n.log.Warn("change feed lost, retrying", "err", err, "delay", delay.String())
		n.broadcastDown(err)

		select {
		case <-ctx.Done():
			return
		case <-n.stop:
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > n.retryMax {
			delay = n.retryMax
		}
	}
}

// listenOnce holds one LISTEN session until it fails. On a successful
// (re-)establish it resets the backoff and signals recovery to subscribers.
func (n *Notifier) listenOnce(ctx context.Context, delay *time.Duration) error {
	ln := pgdriver.NewListener(n.db)
	defer ln.Close()

	if err := ln.Listen(ctx, n.scope.NotifyChannel()); err != nil {
		return errors.Wrap(err, "notifier.Listen: ")
	}
	*delay = n.retryMin
	n.broadcastDown(nil)

	ch := ln.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.stop:
			return nil
		case notif, ok := <-ch:
			if !ok {
				return errors.New("notification channel closed")
			}
			var ev Event
			if err := json.Unmarshal([]byte(notif.Payload), &ev); err != nil {
				n.log.Warn("dropping malformed change event", "payload", notif.Payload, "err", err)
				continue
			}
			n.dispatch(ev)
		}
	}
}

// dispatch fans an event out to matching subscribers. Sends never block: a
// full buffer drops the event, which is safe because every consumer is
// level-triggered — it re-reads current store state on each wake-up rather
// than interpreting event payloads.
func (n *Notifier) dispatch(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s := range n.subs {
		if s.match != nil && !s.match(ev) {
			continue
		}
		select {
		case s.events <- ev:
		default:
			n.log.Debug("subscriber buffer full, coalescing event", "collection", ev.Collection)
		}
	}
}

func (n *Notifier) broadcastDown(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s := range n.subs {
		select {
		case s.down <- err:
		default:
		}
	}
}

func stopped(stop chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

type subscription struct {
	n      *Notifier
	match  func(Event) bool
	events chan Event
	down   chan error
	once   sync.Once
}

func (s *subscription) Events() <-chan Event { return s.events }
func (s *subscription) Down() <-chan error   { return s.down }

func (s *subscription) Close() {
	s.once.Do(func() {
		s.n.mu.Lock()
		delete(s.n.subs, s)
		close(s.events)
		close(s.down)
		s.n.mu.Unlock()
	})
}
