package account

import (
	"context"

	"github.com/google/uuid"
)

type AccountUsecase interface {
	// Register a new account under a unique handle (handle is immutable)
	Register(ctx context.Context, cmd RegisterCommand) (*AccountDTO, error)

	Lookup(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
	LookupByHandle(ctx context.Context, handle string) (*AccountDTO, error)

	// UpdateProfile applies a partial profile update; only the owning
	// account may call it.
	UpdateProfile(ctx context.Context, callerID uuid.UUID, cmd UpdateProfileCommand) (*AccountDTO, error)
}
