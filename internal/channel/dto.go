package channel

import (
	"time"

	"github.com/google/uuid"

	model "parley/internal/channel/model"
)

// NOTE: commands travel from caller to usecase, DTOs travel back out.

// Input commands
type CreateChannelCommand struct {
	Name      string
	Private   bool
	CreatorID uuid.UUID
	AvatarRef string
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type DecideCommand struct {
	ChannelID       uuid.UUID
	DeciderID       uuid.UUID
	TargetAccountID uuid.UUID
	Decision        Decision
}

// Output DTOs
type ChannelDTO struct {
	ID          uuid.UUID
	Name        string
	Private     bool
	AdminID     uuid.UUID
	AvatarRef   string
	MemberCount int
	Members     []uuid.UUID
	CreatedAt   time.Time
}

type MembershipDTO struct {
	ChannelID uuid.UUID
	AccountID uuid.UUID
	Role      model.Role
	Status    model.Status
	JoinedAt  time.Time

	// AlreadyMember marks the idempotent re-join of an approved member:
	// success, nothing changed.
	AlreadyMember bool
}

// PendingRequestDTO is one entry per pending membership — never one per
// channel — on a channel the queried account administers.
type PendingRequestDTO struct {
	Channel    ChannelDTO
	Membership MembershipDTO
}

type MessageDTO struct {
	ID           uuid.UUID
	ChannelID    uuid.UUID
	Seq          int64
	SenderID     uuid.UUID
	SenderName   string
	SenderAvatar string
	Body         string
	SentAt       time.Time
}
