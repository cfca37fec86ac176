package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Scope pins all reads, writes and notifications to one application/tenant.
// It is built once from config and injected into every repository and the
// notifier; nothing reads it from ambient state.
type Scope struct {
	AppID string
}

// NotifyChannel is the Postgres NOTIFY channel carrying this scope's change
// events.
func (s Scope) NotifyChannel() string {
	return "parley_events_" + s.AppID
}

const (
	CollectionChannels    = "channels"
	CollectionMemberships = "memberships"
	CollectionMessages    = "messages"
)

type Op string

const (
	OpAdd    Op = "add"
	OpModify Op = "modify"
	OpRemove Op = "remove"
)

// Event is one committed change, published from inside the writing
// transaction so delivery follows commit order per key. No ordering holds
// across different keys or collections; consumers re-read current state
// rather than replaying event contents.
type Event struct {
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	ChannelID  uuid.UUID `json:"channel_id,omitempty"`
	AccountID  uuid.UUID `json:"account_id,omitempty"`
	Seq        int64     `json:"seq,omitempty"`
}

// Notify publishes ev on the scope's channel. Callers pass their open
// transaction so the notification is delivered only if the write commits.
func Notify(ctx context.Context, db bun.IDB, scope Scope, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "store.Notify.Marshal: ")
	}
	if _, err := db.ExecContext(ctx, "SELECT pg_notify(?, ?)", scope.NotifyChannel(), string(payload)); err != nil {
		return errors.Wrap(err, "store.Notify.Exec: ")
	}
	return nil
}
