package account

import (
	"time"

	"github.com/google/uuid"
)

// NOTE: commands travel from caller to usecase, DTOs travel back out.

// Input commands
type RegisterCommand struct {
	Handle      string
	DisplayName string // defaults to the handle when empty
	AvatarRef   string
}

type UpdateProfileCommand struct {
	AccountID   uuid.UUID
	DisplayName *string // nil = keep current
	AvatarRef   *string // nil = keep current
}

// Output DTOs
type AccountDTO struct {
	ID          uuid.UUID
	Handle      string
	DisplayName string
	AvatarRef   string
	CreatedAt   time.Time
}
