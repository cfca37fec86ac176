package model

import (
	"time"

	"github.com/google/uuid"
)

type Channel struct {
	ID uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`

	// AppID + Name form the uniqueness key (case-sensitive); the index makes
	// channel creation a conditional create.
	AppID string `bun:",notnull,unique:channels_app_name"`
	Name  string `bun:",notnull,unique:channels_app_name"`

	IsPrivate bool `bun:",default:false"` // private = joins need admin approval

	// Ownership & metadata
	AdminID   uuid.UUID `bun:",notnull,type:uuid"` // set at creation, immutable
	AvatarRef string    `bun:",nullzero"`

	// Denormalized approved-member set, kept consistent with the
	// authoritative membership records in the same transaction that touches
	// either. Always contains AdminID.
	Members []uuid.UUID `bun:"members,array,type:uuid[]"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// CanDecide reports whether accountID holds decision authority over join
// requests. Authority is a capability of the channel, not an id comparison
// scattered around call sites, so growing to multiple admins stays local.
func (c *Channel) CanDecide(accountID uuid.UUID) bool {
	return accountID == c.AdminID
}

// HasMember reports membership in the denormalized approved set.
func (c *Channel) HasMember(accountID uuid.UUID) bool {
	for _, id := range c.Members {
		if id == accountID {
			return true
		}
	}
	return false
}
