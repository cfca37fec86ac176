package channel

import (
	"context"

	"github.com/google/uuid"

	model "parley/internal/channel/model"
)

type ChannelRepository interface {
	// CreateChannel inserts the channel conditionally on the (app, name)
	// uniqueness index and, in the same transaction, the creator's admin
	// membership with the member set seeded to {creator}.
	CreateChannel(ctx context.Context, ch *model.Channel, admin *model.Membership) error
	GetChannelByID(ctx context.Context, id uuid.UUID) (*model.Channel, error)
	GetChannelByName(ctx context.Context, name string) (*model.Channel, error)
	ListApprovedForAccount(ctx context.Context, accountID uuid.UUID) ([]*model.Channel, error)
	// ListPendingForAdmin returns pending memberships (Channel relation
	// loaded) across the channels adminID administers, oldest first.
	ListPendingForAdmin(ctx context.Context, adminID uuid.UUID) ([]*model.Membership, error)

	GetMembership(ctx context.Context, channelID, accountID uuid.UUID) (*model.Membership, error)
	// CreateMembership inserts conditionally on the composite key and
	// returns the authoritative record: the inserted one, or the existing
	// one when a concurrent join won the race. addToMemberSet also adds the
	// account to the channel's approved set in the same transaction
	// (public-channel auto-approve).
	CreateMembership(ctx context.Context, m *model.Membership, addToMemberSet bool) (*model.Membership, error)
	// DecideMembership locks the row, rejects terminal states, then applies
	// the status change and the member-set projection as one atomic unit.
	DecideMembership(ctx context.Context, channelID, accountID uuid.UUID, approve bool) (*model.Membership, error)
}

type MessageRepository interface {
	// InsertMessage verifies approved membership and appends inside one
	// transaction, publishing the change event on commit.
	InsertMessage(ctx context.Context, msg *model.Message) error
	// ListMessages returns messages with seq beyond afterSeq in send order.
	ListMessages(ctx context.Context, channelID uuid.UUID, afterSeq int64) ([]*model.Message, error)
}
