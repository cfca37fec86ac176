package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`

	AppID     string    `bun:",notnull"`
	ChannelID uuid.UUID `bun:",notnull,type:uuid"`
	Channel   *Channel  `bun:"rel:belongs-to,join:channel_id=id"`

	// Seq is assigned by the database at insert. It is the deterministic
	// tie-break after SentAt and the resume cursor for live subscriptions.
	Seq int64 `bun:"seq,nullzero,notnull,type:bigserial"`

	// Sender identity snapshotted at send time; later profile edits do not
	// rewrite history.
	SenderID     uuid.UUID `bun:",notnull,type:uuid"`
	SenderName   string    `bun:",notnull"`
	SenderAvatar string    `bun:",nullzero"`

	Body string `bun:",notnull"`

	// clock_timestamp (not transaction start): assigned while the
	// per-channel insert lock is held, so SentAt, Seq and commit order all
	// agree within a channel.
	SentAt time.Time `bun:",nullzero,notnull,default:clock_timestamp()"`
}
