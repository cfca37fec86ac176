package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	model "parley/internal/channel/model"
	"parley/internal/store"
	"parley/pkg/logger"
)

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrDuplicateName      = errors.New("channel name already registered")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrAlreadyDecided     = errors.New("membership already in a terminal state")
	ErrSenderNotApproved  = errors.New("sender has no approved membership")
)

type ChannelRepository struct {
	db     *bun.DB
	scope  store.Scope
	logger *logger.Logger
}

func NewChannelRepository(db *bun.DB, scope store.Scope, logger logger.Logger) *ChannelRepository {
	return &ChannelRepository{
		db:     db,
		scope:  scope,
		logger: &logger,
	}
}

// CreateChannel commits the channel row, the creator's admin membership and
// the seeded member set as one transaction. The (app_id, name) unique index
// makes the insert conditional: a racing create with the same name loses at
// commit time, never after a stale read.
func (r *ChannelRepository) CreateChannel(ctx context.Context, ch *model.Channel, admin *model.Membership) error {
	ch.AppID = r.scope.AppID
	ch.Members = []uuid.UUID{admin.AccountID}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(ch).
			On("CONFLICT (app_id, name) DO NOTHING").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "channelRepo.CreateChannel.InsertChannel: ")
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "channelRepo.CreateChannel.RowsAffected: ")
		}
		if rows == 0 {
			return ErrDuplicateName
		}

		admin.ChannelID = ch.ID
		admin.AppID = r.scope.AppID
		if _, err := tx.NewInsert().Model(admin).Returning("*").Exec(ctx); err != nil {
			return errors.Wrap(err, "channelRepo.CreateChannel.InsertMembership: ")
		}

		if err := store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionChannels,
			Op:         store.OpAdd,
			ChannelID:  ch.ID,
		}); err != nil {
			return err
		}
		return store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionMemberships,
			Op:         store.OpAdd,
			ChannelID:  ch.ID,
			AccountID:  admin.AccountID,
		})
	})
}

func (r *ChannelRepository) GetChannelByID(ctx context.Context, id uuid.UUID) (*model.Channel, error) {
	ch := new(model.Channel)
	err := r.db.NewSelect().Model(ch).
		Where("app_id = ?", r.scope.AppID).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, errors.Wrap(err, "channelRepo.GetChannelByID.Scan: ")
	}
	return ch, nil
}

func (r *ChannelRepository) GetChannelByName(ctx context.Context, name string) (*model.Channel, error) {
	ch := new(model.Channel)
	err := r.db.NewSelect().Model(ch).
		Where("app_id = ?", r.scope.AppID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, errors.Wrap(err, "channelRepo.GetChannelByName.Scan: ")
	}
	return ch, nil
}

func (r *ChannelRepository) ListApprovedForAccount(ctx context.Context, accountID uuid.UUID) ([]*model.Channel, error) {
	var chs []*model.Channel
	err := r.db.NewSelect().Model(&chs).
		Where("app_id = ?", r.scope.AppID).
		Where("id IN (SELECT channel_id FROM memberships WHERE app_id = ? AND account_id = ? AND status = ?)",
			r.scope.AppID, accountID, model.StatusApproved).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "channelRepo.ListApprovedForAccount.Scan: ")
	}
	return chs, nil
}

func (r *ChannelRepository) ListPendingForAdmin(ctx context.Context, adminID uuid.UUID) ([]*model.Membership, error) {
	var ms []*model.Membership
	err := r.db.NewSelect().Model(&ms).
		Relation("Channel").
		Where("membership.app_id = ?", r.scope.AppID).
		Where("membership.status = ?", model.StatusPending).
		Where("channel.admin_id = ?", adminID).
		Order("membership.joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "channelRepo.ListPendingForAdmin.Scan: ")
	}
	return ms, nil
}

func (r *ChannelRepository) GetMembership(ctx context.Context, channelID, accountID uuid.UUID) (*model.Membership, error) {
	m := new(model.Membership)
	err := r.db.NewSelect().Model(m).
		Where("app_id = ?", r.scope.AppID).
		Where("channel_id = ?", channelID).
		Where("account_id = ?", accountID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, errors.Wrap(err, "channelRepo.GetMembership.Scan: ")
	}
	return m, nil
}

// CreateMembership inserts conditionally on the composite (channel, account)
// key. When a concurrent join already created the record, the existing row
// is returned untouched — the caller treats it as the authoritative state.
func (r *ChannelRepository) CreateMembership(ctx context.Context, m *model.Membership, addToMemberSet bool) (*model.Membership, error) {
	m.AppID = r.scope.AppID

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(m).
			On("CONFLICT (channel_id, account_id) DO NOTHING").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "channelRepo.CreateMembership.Insert: ")
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "channelRepo.CreateMembership.RowsAffected: ")
		}
		if rows == 0 {
			existing := new(model.Membership)
			err := tx.NewSelect().Model(existing).
				Where("app_id = ?", r.scope.AppID).
				Where("channel_id = ?", m.ChannelID).
				Where("account_id = ?", m.AccountID).
				Scan(ctx)
			if err != nil {
				return errors.Wrap(err, "channelRepo.CreateMembership.SelectExisting: ")
			}
			*m = *existing
			return nil
		}

		if addToMemberSet {
			if err := r.addMember(ctx, tx, m.ChannelID, m.AccountID); err != nil {
				return err
			}
			if err := store.Notify(ctx, tx, r.scope, store.Event{
				Collection: store.CollectionChannels,
				Op:         store.OpModify,
				ChannelID:  m.ChannelID,
			}); err != nil {
				return err
			}
		}
		return store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionMemberships,
			Op:         store.OpAdd,
			ChannelID:  m.ChannelID,
			AccountID:  m.AccountID,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecideMembership serializes concurrent decisions per (channel, account) by
// locking the row. A terminal status is never overwritten; the loser of a
// race gets ErrAlreadyDecided. Status change and member-set projection
// commit together or not at all.
func (r *ChannelRepository) DecideMembership(ctx context.Context, channelID, accountID uuid.UUID, approve bool) (*model.Membership, error) {
	m := new(model.Membership)

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(m).
			Where("app_id = ?", r.scope.AppID).
			Where("channel_id = ?", channelID).
			Where("account_id = ?", accountID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMembershipNotFound
			}
			return errors.Wrap(err, "channelRepo.DecideMembership.Lock: ")
		}
		if m.Status.Terminal() {
			return ErrAlreadyDecided
		}

		status := model.StatusRejected
		if approve {
			status = model.StatusApproved
		}
		_, err = tx.NewUpdate().Model((*model.Membership)(nil)).
			Set("status = ?", status).
			Where("app_id = ?", r.scope.AppID).
			Where("channel_id = ?", channelID).
			Where("account_id = ?", accountID).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "channelRepo.DecideMembership.Update: ")
		}
		m.Status = status

		if approve {
			err = r.addMember(ctx, tx, channelID, accountID)
		} else {
			err = r.removeMember(ctx, tx, channelID, accountID)
		}
		if err != nil {
			return err
		}

		if err := store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionMemberships,
			Op:         store.OpModify,
			ChannelID:  channelID,
			AccountID:  accountID,
		}); err != nil {
			return err
		}
		return store.Notify(ctx, tx, r.scope, store.Event{
			Collection: store.CollectionChannels,
			Op:         store.OpModify,
			ChannelID:  channelID,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// addMember and removeMember are idempotent set operations so retries and
// out-of-order writers converge on the same member set.
func (r *ChannelRepository) addMember(ctx context.Context, tx bun.Tx, channelID, accountID uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.Channel)(nil)).
		Set("members = array_append(members, ?)", accountID).
		Where("app_id = ?", r.scope.AppID).
		Where("id = ?", channelID).
		Where("NOT (? = ANY(members))", accountID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "channelRepo.addMember.Exec: ")
	}
	return nil
}

func (r *ChannelRepository) removeMember(ctx context.Context, tx bun.Tx, channelID, accountID uuid.UUID) error {
	_, err := tx.NewUpdate().Model((*model.Channel)(nil)).
		Set("members = array_remove(members, ?)", accountID).
		Where("app_id = ?", r.scope.AppID).
		Where("id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "channelRepo.removeMember.Exec: ")
	}
	return nil
}
