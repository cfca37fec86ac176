package usecase

import (
	"context"
	"regexp"

	stderrors "errors"

	"github.com/google/uuid"

	"parley/config"
	"parley/internal/account"
	models "parley/internal/account/model"
	"parley/internal/account/repository"
	"parley/pkg/errors"
	"parley/pkg/logger"
)

type AccountUsecase struct {
	repo   account.AccountRepository
	logger logger.Logger
	config config.Config
}

func NewAccountUsecase(repo account.AccountRepository, logger logger.Logger, config config.Config) *AccountUsecase {
	return &AccountUsecase{repo: repo, logger: logger, config: config}
}

func (uc *AccountUsecase) Register(ctx context.Context, cmd account.RegisterCommand) (*account.AccountDTO, error) {
	if err := validateHandle(cmd.Handle); err != nil {
		return nil, err
	}

	displayName := cmd.DisplayName
	if displayName == "" {
		displayName = cmd.Handle
	}

	acc := &models.Account{
		Handle:    cmd.Handle,
		Name:      displayName,
		AvatarRef: cmd.AvatarRef,
	}
	if err := uc.repo.CreateAccount(ctx, acc); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateHandle) {
			return nil, errors.ErrHandleTaken
		}
		uc.logger.Error("error while saving account in db", "err", err)
		return nil, errors.ErrRegistrationFailed(errors.Internal("database error"))
	}

	return toDTO(acc), nil
}

func (uc *AccountUsecase) Lookup(ctx context.Context, accountID uuid.UUID) (*account.AccountDTO, error) {
	acc, err := uc.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		uc.logger.Error("database error looking up account", "account_id", accountID, "err", err)
		return nil, errors.Internal("internal server error")
	}
	return toDTO(acc), nil
}

func (uc *AccountUsecase) LookupByHandle(ctx context.Context, handle string) (*account.AccountDTO, error) {
	acc, err := uc.repo.GetAccountByHandle(ctx, handle)
	if err != nil {
		if stderrors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		uc.logger.Error("database error looking up account", "handle", handle, "err", err)
		return nil, errors.Internal("internal server error")
	}
	return toDTO(acc), nil
}

func (uc *AccountUsecase) UpdateProfile(ctx context.Context, callerID uuid.UUID, cmd account.UpdateProfileCommand) (*account.AccountDTO, error) {
	if callerID != cmd.AccountID {
		return nil, errors.ErrNotProfileOwner
	}
	if cmd.DisplayName != nil && *cmd.DisplayName == "" {
		return nil, errors.InvalidArg("display name cannot be empty")
	}

	acc, err := uc.repo.UpdateProfile(ctx, cmd.AccountID, cmd.DisplayName, cmd.AvatarRef)
	if err != nil {
		if stderrors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		uc.logger.Errorf("error while updating profile in db: %v", err)
		return nil, errors.Internal("error while updating profile in db")
	}
	return toDTO(acc), nil
}

// Handles are 2-16 chars of letters, digits, '.' and '_', and must contain
// at least one letter or digit.
var (
	handleRegex     = regexp.MustCompile(`^[A-Za-z0-9._]{2,16}$`)
	handleOnlyPunct = regexp.MustCompile(`^[._]+$`)
)

func validateHandle(handle string) error {
	if !handleRegex.MatchString(handle) || handleOnlyPunct.MatchString(handle) {
		return errors.ErrInvalidHandle
	}
	return nil
}

func toDTO(acc *models.Account) *account.AccountDTO {
	return &account.AccountDTO{
		ID:          acc.ID,
		Handle:      acc.Handle,
		DisplayName: acc.Name,
		AvatarRef:   acc.AvatarRef,
		CreatedAt:   acc.CreatedAt,
	}
}
