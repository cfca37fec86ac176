package model

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`

	// AppID + Handle form the uniqueness key; the index is what makes
	// registration a conditional create rather than read-then-write.
	AppID  string `bun:",notnull,unique:accounts_app_handle"`
	Handle string `bun:",notnull,unique:accounts_app_handle"`

	// Name = display name shown in chats (can be changed freely)
	Name      string `bun:",notnull"`
	AvatarRef string `bun:",nullzero"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
