package usecase

import (
	"context"
	"regexp"

	stderrors "errors"

	"github.com/google/uuid"

	"parley/config"
	"parley/internal/channel"
	models "parley/internal/channel/model"
	"parley/internal/channel/repository"
	"parley/pkg/errors"
	"parley/pkg/logger"
)

type ChannelUsecase struct {
	repo   channel.ChannelRepository
	logger logger.Logger
	config config.Config
}

func NewChannelUsecase(repo channel.ChannelRepository, logger logger.Logger, config config.Config) *ChannelUsecase {
	return &ChannelUsecase{repo: repo, logger: logger, config: config}
}

func (uc *ChannelUsecase) Create(ctx context.Context, cmd channel.CreateChannelCommand) (*channel.ChannelDTO, error) {
	if err := validateChannelName(cmd.Name); err != nil {
		return nil, err
	}

	ch := &models.Channel{
		Name:      cmd.Name,
		IsPrivate: cmd.Private,
		AdminID:   cmd.CreatorID,
		AvatarRef: cmd.AvatarRef,
	}
	admin := &models.Membership{
		AccountID: cmd.CreatorID,
		Role:      models.RoleAdmin,
		Status:    models.StatusApproved,
	}
	if err := uc.repo.CreateChannel(ctx, ch, admin); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateName) {
			return nil, errors.ErrChannelNameTaken
		}
		uc.logger.Error("error while creating channel in db", "name", cmd.Name, "err", err)
		return nil, errors.ErrChannelCreateFailed(errors.Internal("database error"))
	}

	return toChannelDTO(ch), nil
}

func (uc *ChannelUsecase) FindByName(ctx context.Context, name string) (*channel.ChannelDTO, error) {
	ch, err := uc.repo.GetChannelByName(ctx, name)
	if err != nil {
		if stderrors.Is(err, repository.ErrChannelNotFound) {
			return nil, errors.ErrChannelNotFound
		}
		uc.logger.Error("database error finding channel", "name", name, "err", err)
		return nil, errors.Internal("internal server error")
	}
	return toChannelDTO(ch), nil
}

func (uc *ChannelUsecase) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*channel.ChannelDTO, error) {
	chs, err := uc.repo.ListApprovedForAccount(ctx, accountID)
	if err != nil {
		uc.logger.Errorf("error while listing channels for account: %v", err)
		return nil, errors.Internal("error while listing channels")
	}
	dtos := make([]*channel.ChannelDTO, 0, len(chs))
	for _, ch := range chs {
		dtos = append(dtos, toChannelDTO(ch))
	}
	return dtos, nil
}

func (uc *ChannelUsecase) ListPendingAdministeredBy(ctx context.Context, adminID uuid.UUID) ([]*channel.PendingRequestDTO, error) {
	ms, err := uc.repo.ListPendingForAdmin(ctx, adminID)
	if err != nil {
		uc.logger.Errorf("error while listing pending requests: %v", err)
		return nil, errors.Internal("error while listing pending requests")
	}
	dtos := make([]*channel.PendingRequestDTO, 0, len(ms))
	for _, m := range ms {
		dto := &channel.PendingRequestDTO{Membership: *toMembershipDTO(m)}
		if m.Channel != nil {
			dto.Channel = *toChannelDTO(m.Channel)
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// RequestJoin drives the membership state machine: an existing record is
// authoritative and returned unchanged; a fresh join is auto-approved on
// public channels and left pending on private ones.
func (uc *ChannelUsecase) RequestJoin(ctx context.Context, channelID, accountID uuid.UUID) (*channel.MembershipDTO, error) {
	ch, err := uc.repo.GetChannelByID(ctx, channelID)
	if err != nil {
		if stderrors.Is(err, repository.ErrChannelNotFound) {
			return nil, errors.ErrChannelNotFound
		}
		uc.logger.Error("database error loading channel", "channel_id", channelID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	if m, err := uc.repo.GetMembership(ctx, channelID, accountID); err == nil {
		dto := toMembershipDTO(m)
		dto.AlreadyMember = m.Status == models.StatusApproved
		return dto, nil
	} else if !stderrors.Is(err, repository.ErrMembershipNotFound) {
		uc.logger.Error("database error loading membership", "channel_id", channelID, "account_id", accountID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	status := models.StatusPending
	if !ch.IsPrivate {
		status = models.StatusApproved
	}
	m := &models.Membership{
		ChannelID: channelID,
		AccountID: accountID,
		Role:      models.RoleMember,
		Status:    status,
	}
	m, err = uc.repo.CreateMembership(ctx, m, !ch.IsPrivate)
	if err != nil {
		uc.logger.Error("error while creating membership in db", "channel_id", channelID, "account_id", accountID, "err", err)
		return nil, errors.Internal("error while creating membership")
	}
	return toMembershipDTO(m), nil
}

func (uc *ChannelUsecase) Decide(ctx context.Context, cmd channel.DecideCommand) (*channel.MembershipDTO, error) {
	if cmd.Decision != channel.DecisionApprove && cmd.Decision != channel.DecisionReject {
		return nil, errors.InvalidArg("decision must be approve or reject")
	}

	ch, err := uc.repo.GetChannelByID(ctx, cmd.ChannelID)
	if err != nil {
		if stderrors.Is(err, repository.ErrChannelNotFound) {
			return nil, errors.ErrChannelNotFound
		}
		uc.logger.Error("database error loading channel", "channel_id", cmd.ChannelID, "err", err)
		return nil, errors.Internal("internal server error")
	}
	if !ch.CanDecide(cmd.DeciderID) {
		return nil, errors.ErrNotAdmin
	}

	m, err := uc.repo.DecideMembership(ctx, cmd.ChannelID, cmd.TargetAccountID, cmd.Decision == channel.DecisionApprove)
	if err != nil {
		if stderrors.Is(err, repository.ErrMembershipNotFound) || stderrors.Is(err, repository.ErrAlreadyDecided) {
			return nil, errors.ErrNoSuchMembership
		}
		uc.logger.Error("error while deciding membership", "channel_id", cmd.ChannelID, "account_id", cmd.TargetAccountID, "err", err)
		return nil, errors.Internal("error while deciding membership")
	}
	return toMembershipDTO(m), nil
}

// Channel names are 2-16 alphanumeric chars, case-sensitive.
var channelNameRegex = regexp.MustCompile(`^[A-Za-z0-9]{2,16}$`)

func validateChannelName(name string) error {
	if !channelNameRegex.MatchString(name) {
		return errors.ErrInvalidChannelName
	}
	return nil
}

func toChannelDTO(ch *models.Channel) *channel.ChannelDTO {
	return &channel.ChannelDTO{
		ID:          ch.ID,
		Name:        ch.Name,
		Private:     ch.IsPrivate,
		AdminID:     ch.AdminID,
		AvatarRef:   ch.AvatarRef,
		MemberCount: len(ch.Members),
		Members:     ch.Members,
		CreatedAt:   ch.CreatedAt,
	}
}

func toMembershipDTO(m *models.Membership) *channel.MembershipDTO {
	return &channel.MembershipDTO{
		ChannelID: m.ChannelID,
		AccountID: m.AccountID,
		Role:      m.Role,
		Status:    m.Status,
		JoinedAt:  m.JoinedAt,
	}
}
