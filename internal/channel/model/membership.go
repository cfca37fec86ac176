package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status admits no further transitions:
// absent → pending → {approved, rejected}, with approved also reachable
// directly from absent (public join, channel creation).
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Membership is the single record governing one account's relationship to
// one channel. The composite primary key guarantees at most one record per
// (channel, account) pair.
type Membership struct {
	ChannelID uuid.UUID `bun:",pk,type:uuid"`
	Channel   *Channel  `bun:"rel:belongs-to,join:channel_id=id"`

	AccountID uuid.UUID `bun:",pk,type:uuid"`

	AppID string `bun:",notnull"`

	Role   Role   `bun:",notnull,default:'member'"`
	Status Status `bun:",notnull,default:'pending'"`

	JoinedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
