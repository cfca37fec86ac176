package channel

import (
	"context"

	"github.com/google/uuid"
)

type ChannelUsecase interface {
	// Create a channel and its admin membership atomically (name is unique
	// per app, case-sensitive)
	Create(ctx context.Context, cmd CreateChannelCommand) (*ChannelDTO, error)
	FindByName(ctx context.Context, name string) (*ChannelDTO, error)

	// ListForAccount returns channels where the account's membership is
	// approved; the live form of this list is the sync facade's view.
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*ChannelDTO, error)
	// ListPendingAdministeredBy returns one entry per pending membership on
	// channels the account administers.
	ListPendingAdministeredBy(ctx context.Context, adminID uuid.UUID) ([]*PendingRequestDTO, error)

	// RequestJoin is idempotent: an existing membership is returned
	// unchanged whatever its status.
	RequestJoin(ctx context.Context, channelID, accountID uuid.UUID) (*MembershipDTO, error)
	// Decide approves or rejects a pending request; only the channel's
	// administrator may call it, and a terminal membership is never
	// overwritten.
	Decide(ctx context.Context, cmd DecideCommand) (*MembershipDTO, error)
}

type MessageUsecase interface {
	// Append writes a message as senderID, snapshotting the sender's
	// display name and avatar at call time.
	Append(ctx context.Context, channelID, senderID uuid.UUID, body string) (*MessageDTO, error)
	// Subscribe streams the channel's backlog in send order followed by
	// live appends until ctx is cancelled.
	Subscribe(ctx context.Context, channelID uuid.UUID) (<-chan MessageDTO, error)
}
