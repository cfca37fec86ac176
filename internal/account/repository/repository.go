package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	model "parley/internal/account/model"
	"parley/internal/store"
	"parley/pkg/logger"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateHandle = errors.New("handle already registered")
)

type AccountRepository struct {
	db     *bun.DB
	scope  store.Scope
	logger *logger.Logger
}

func NewAccountRepository(db *bun.DB, scope store.Scope, logger logger.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		scope:  scope,
		logger: &logger,
	}
}

// CreateAccount relies on the (app_id, handle) unique index: the insert and
// the uniqueness check are one conditional write, so two racing
// registrations cannot both commit.
func (r *AccountRepository) CreateAccount(ctx context.Context, acc *model.Account) error {
	acc.AppID = r.scope.AppID

	res, err := r.db.NewInsert().
		Model(acc).
		On("CONFLICT (app_id, handle) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "accountRepo.CreateAccount.Insert: ")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "accountRepo.CreateAccount.RowsAffected: ")
	}
	if rows == 0 {
		return ErrDuplicateHandle
	}
	return nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	acc := new(model.Account)
	err := r.db.NewSelect().Model(acc).
		Where("app_id = ?", r.scope.AppID).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "accountRepo.GetAccountByID.Scan: ")
	}
	return acc, nil
}

func (r *AccountRepository) GetAccountByHandle(ctx context.Context, handle string) (*model.Account, error) {
	acc := new(model.Account)
	err := r.db.NewSelect().Model(acc).
		Where("app_id = ?", r.scope.AppID).
		Where("handle = ?", handle).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "accountRepo.GetAccountByHandle.Scan: ")
	}
	return acc, nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, displayName, avatarRef *string) (*model.Account, error) {
	acc := new(model.Account)

	q := r.db.NewUpdate().Model(acc).
		Set("updated_at = ?", time.Now().UTC()).
		Where("app_id = ?", r.scope.AppID).
		Where("id = ?", id).
		Returning("*")
	if displayName != nil {
		q = q.Set("name = ?", *displayName)
	}
	if avatarRef != nil {
		q = q.Set("avatar_ref = ?", *avatarRef)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "accountRepo.UpdateProfile.Exec: ")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "accountRepo.UpdateProfile.RowsAffected: ")
	}
	if rows == 0 {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}
