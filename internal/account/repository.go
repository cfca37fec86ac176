package account

import (
	"context"

	"github.com/google/uuid"

	model "parley/internal/account/model"
)

type AccountRepository interface {
	// CreateAccount inserts conditionally on the (app, handle) uniqueness
	// index; a conflict at commit time surfaces as ErrDuplicateHandle.
	CreateAccount(ctx context.Context, acc *model.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error)
	// UpdateProfile sets only the non-nil fields and returns the updated row.
	UpdateProfile(ctx context.Context, id uuid.UUID, displayName, avatarRef *string) (*model.Account, error)
}
