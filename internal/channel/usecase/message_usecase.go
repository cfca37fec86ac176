package usecase

import (
	"context"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"

	"parley/internal/account"
	accountrepo "parley/internal/account/repository"
	"parley/internal/channel"
	models "parley/internal/channel/model"
	"parley/internal/channel/repository"
	"parley/internal/store"
	"parley/pkg/errors"
	"parley/pkg/logger"
)

type MessageUsecase struct {
	messages channel.MessageRepository
	channels channel.ChannelRepository
	accounts account.AccountRepository
	feed     store.Feed
	logger   logger.Logger
}

func NewMessageUsecase(
	messages channel.MessageRepository,
	channels channel.ChannelRepository,
	accounts account.AccountRepository,
	feed store.Feed,
	logger logger.Logger,
) *MessageUsecase {
	return &MessageUsecase{
		messages: messages,
		channels: channels,
		accounts: accounts,
		feed:     feed,
		logger:   logger,
	}
}

func (uc *MessageUsecase) Append(ctx context.Context, channelID, senderID uuid.UUID, body string) (*channel.MessageDTO, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.ErrEmptyMessage
	}

	sender, err := uc.accounts.GetAccountByID(ctx, senderID)
	if err != nil {
		if stderrors.Is(err, accountrepo.ErrAccountNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		uc.logger.Error("database error loading sender", "account_id", senderID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	// Sender identity is captured here, not looked up at read time: later
	// profile edits leave history untouched.
	msg := &models.Message{
		ChannelID:    channelID,
		SenderID:     senderID,
		SenderName:   sender.Name,
		SenderAvatar: sender.AvatarRef,
		Body:         body,
	}
	if err := uc.messages.InsertMessage(ctx, msg); err != nil {
		if stderrors.Is(err, repository.ErrSenderNotApproved) {
			return nil, errors.ErrNotApprovedMember
		}
		uc.logger.Error("error while appending message", "channel_id", channelID, "err", err)
		return nil, errors.Internal("error while appending message")
	}
	return toMessageDTO(msg), nil
}

// Subscribe delivers the full backlog in send order, then live appends as
// they commit. The feed is forward-only from the subscriber's point of view;
// cancelling ctx releases this watch without touching other subscribers.
func (uc *MessageUsecase) Subscribe(ctx context.Context, channelID uuid.UUID) (<-chan channel.MessageDTO, error) {
	if _, err := uc.channels.GetChannelByID(ctx, channelID); err != nil {
		if stderrors.Is(err, repository.ErrChannelNotFound) {
			return nil, errors.ErrChannelNotFound
		}
		uc.logger.Error("database error loading channel", "channel_id", channelID, "err", err)
		return nil, errors.Internal("internal server error")
	}

	sub := uc.feed.Subscribe(func(ev store.Event) bool {
		return ev.Collection == store.CollectionMessages && ev.ChannelID == channelID
	})

	out := make(chan channel.MessageDTO, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		// cursor is the highest seq pushed so far; every wake-up fetches
		// whatever committed past it, so coalesced notifications cannot
		// drop messages.
		var cursor int64
		flush := func() {
			msgs, err := uc.messages.ListMessages(ctx, channelID, cursor)
			if err != nil {
				if ctx.Err() == nil {
					uc.logger.Warn("message fetch failed, will retry on next change", "channel_id", channelID, "err", err)
				}
				return
			}
			for _, m := range msgs {
				select {
				case out <- *toMessageDTO(m):
				case <-ctx.Done():
					return
				}
				if m.Seq > cursor {
					cursor = m.Seq
				}
			}
		}

		flush()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Events():
				if !ok {
					return
				}
				flush()
			case err, ok := <-sub.Down():
				if !ok {
					return
				}
				if err != nil {
					uc.logger.Warn("change feed lost for message stream", "channel_id", channelID, "err", err)
					continue
				}
				// Feed re-established: catch up on anything committed
				// while it was down.
				flush()
			}
		}
	}()
	return out, nil
}

func toMessageDTO(m *models.Message) *channel.MessageDTO {
	return &channel.MessageDTO{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		Seq:          m.Seq,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Body:         m.Body,
		SentAt:       m.SentAt,
	}
}
