package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	model "parley/internal/channel/model"
	"parley/internal/store"
	"parley/pkg/logger"
)

type MessageRepository struct {
	db     *bun.DB
	scope  store.Scope
	logger *logger.Logger
}

func NewMessageRepository(db *bun.DB, scope store.Scope, logger logger.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		scope:  scope,
		logger: &logger,
	}
}

// InsertMessage re-checks the sender's approved membership inside the
// writing transaction (a concurrent reject must not slip a message in) and
// appends under a per-channel advisory lock so commit order, seq and SentAt
// agree within the channel.
func (r *MessageRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	msg.AppID = r.scope.AppID

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", msg.ChannelID.String(),
		); err != nil {
			return errors.Wrap(err, "messageRepo.InsertMessage.Lock: ")
		}

		approved, err := tx.NewSelect().Model((*model.Membership)(nil)).
			Where("app_id = ?", r.scope.AppID).
			Where("channel_id = ?", msg.ChannelID).
			Where("account_id = ?", msg.SenderID).
			Where("status = ?", model.StatusApproved).
			Exists(ctx)
		if err != nil {
			return errors.Wrap(err, "messageRepo.InsertMessage.CheckMembership: ")
		}
		if !approved {
			return ErrSenderNotApproved
		}

		if _, err := tx.NewInsert().Model(msg).Returning("*").Exec(ctx); err != nil {
			return errors.Wrap(err, "messageRepo.InsertMessage.Insert: ")
		}

		return store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionMessages,
			Op:         store.OpAdd,
			ChannelID:  msg.ChannelID,
			Seq:        msg.Seq,
		})
	})
}

func (r *MessageRepository) ListMessages(ctx context.Context, channelID uuid.UUID, afterSeq int64) ([]*model.Message, error) {
	var msgs []*model.Message
	err := r.db.NewSelect().Model(&msgs).
		Where("app_id = ?", r.scope.AppID).
		Where("channel_id = ?", channelID).
		Where("seq > ?", afterSeq).
		Order("sent_at ASC").
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListMessages.Scan: ")
	}
	return msgs, nil
}
