package sync

import (
	"context"

	"github.com/google/uuid"

	"parley/internal/channel"
	"parley/internal/store"
	"parley/pkg/errors"
	"parley/pkg/logger"
)

// View is one snapshot of a derived, live list. Stale marks the interval
// between losing the change feed and re-establishing it: the items are the
// last known good state and Err says why they may be behind. A stale view is
// recoverable — the facade keeps retrying underneath and emits a fresh
// snapshot once the feed is back.
type View[T any] struct {
	Items T
	Stale bool
	Err   error
}

// Syncer composes the registries into per-account live views. It holds no
// state of its own; every snapshot is recomputed from the store when a
// relevant change notification arrives.
type Syncer struct {
	channels channel.ChannelUsecase
	feed     store.Feed
	logger   logger.Logger
}

func NewSyncer(channels channel.ChannelUsecase, feed store.Feed, logger logger.Logger) *Syncer {
	return &Syncer{channels: channels, feed: feed, logger: logger}
}

// JoinedChannels streams snapshots of the channels accountID belongs to with
// approved status. Membership events for other accounts are filtered out;
// channel events are always relevant because the member-set projection lives
// on the channel record.
func (s *Syncer) JoinedChannels(ctx context.Context, accountID uuid.UUID) (<-chan View[[]*channel.ChannelDTO], error) {
	sub := s.feed.Subscribe(func(ev store.Event) bool {
		switch ev.Collection {
		case store.CollectionMemberships:
			return ev.AccountID == accountID
		case store.CollectionChannels:
			return true
		}
		return false
	})

	out := make(chan View[[]*channel.ChannelDTO], 1)
	go pump(ctx, sub, out, func(ctx context.Context) ([]*channel.ChannelDTO, error) {
		return s.channels.ListForAccount(ctx, accountID)
	}, s.logger)
	return out, nil
}

// PendingRequests streams snapshots of the pending join requests on channels
// adminID administers, one item per pending membership.
func (s *Syncer) PendingRequests(ctx context.Context, adminID uuid.UUID) (<-chan View[[]*channel.PendingRequestDTO], error) {
	sub := s.feed.Subscribe(func(ev store.Event) bool {
		// Which channels adminID administers is not derivable from the
		// event alone, so every membership change triggers a recompute.
		return ev.Collection == store.CollectionMemberships
	})

	out := make(chan View[[]*channel.PendingRequestDTO], 1)
	go pump(ctx, sub, out, func(ctx context.Context) ([]*channel.PendingRequestDTO, error) {
		return s.channels.ListPendingAdministeredBy(ctx, adminID)
	}, s.logger)
	return out, nil
}

// pump drives one view: initial snapshot, recompute per event, stale marking
// while the feed is down, fresh snapshot on recovery. Events arrive in
// commit order per key but in no particular order across collections, so the
// only safe reaction — and the one taken here — is to re-read current state.
func pump[T any](ctx context.Context, sub store.EventStream, out chan View[T], compute func(context.Context) (T, error), log logger.Logger) {
	defer close(out)
	defer sub.Close()

	var last T
	// latest-wins delivery: a consumer that lags sees only the newest
	// snapshot, never a backlog of intermediate ones.
	emit := func(v View[T]) {
		for {
			select {
			case out <- v:
				return
			default:
				select {
				case <-out:
				default:
				}
			}
		}
	}
	recompute := func() {
		items, err := compute(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("view recompute failed", "err", err)
			emit(View[T]{Items: last, Stale: true, Err: err})
			return
		}
		last = items
		emit(View[T]{Items: items})
	}

	recompute()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			recompute()
		case err, ok := <-sub.Down():
			if !ok {
				return
			}
			if err != nil {
				emit(View[T]{
					Items: last,
					Stale: true,
					Err:   errors.Wrap(errors.CodeUnavailable, "change feed unavailable", err),
				})
				continue
			}
			// Feed re-established: converge on current state.
			recompute()
		}
	}
}
