package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	models "parley/internal/channel/model"
	"parley/internal/store"
	"parley/pkg/logger"
)

var (
	testDB     *bun.DB
	testScope  = store.Scope{AppID: "test-app"}
	testLogger logger.Logger
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("parley"),
		postgres.WithUsername("parley"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return
	}

	connector := pgdriver.NewConnector(pgdriver.WithDSN(connStr))
	sqlDB := sql.OpenDB(connector)
	testDB = bun.NewDB(sqlDB, pgdialect.New())

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	if err := store.CreateTables(ctx, testDB); err != nil {
		testDB.Close()
		log.Fatalf("failed to create tables: %v", err)
	}

	code := m.Run()

	testDB.Close()

	os.Exit(code)
}

func truncateAll(t *testing.T) {
	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(),
			`TRUNCATE TABLE channels, memberships, messages CASCADE`)
		require.NoError(t, err)
	})
}

func mustCreateChannel(t *testing.T, repo *ChannelRepository, name string, private bool, adminID uuid.UUID) *models.Channel {
	t.Helper()
	ch := &models.Channel{Name: name, IsPrivate: private, AdminID: adminID}
	admin := &models.Membership{AccountID: adminID, Role: models.RoleAdmin, Status: models.StatusApproved}
	require.NoError(t, repo.CreateChannel(context.Background(), ch, admin))
	return ch
}

// memberSet reloads the channel row and returns its denormalized set.
func memberSet(t *testing.T, repo *ChannelRepository, channelID uuid.UUID) []uuid.UUID {
	t.Helper()
	ch, err := repo.GetChannelByID(context.Background(), channelID)
	require.NoError(t, err)
	return ch.Members
}

func Test_CreateChannel(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()

	ch := mustCreateChannel(t, repo, "general", false, adminID)
	assert.NotEqual(t, uuid.Nil, ch.ID)
	assert.Equal(t, []uuid.UUID{adminID}, ch.Members, "member set seeded with the creator")

	m, err := repo.GetMembership(ctx, ch.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, m.Role)
	assert.Equal(t, models.StatusApproved, m.Status)

	found, err := repo.GetChannelByName(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, ch.ID, found.ID)

	_, err = repo.GetChannelByName(ctx, "General")
	assert.ErrorIs(t, err, ErrChannelNotFound, "name uniqueness is case-sensitive")
}

func Test_CreateChannel_DuplicateName(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)

	mustCreateChannel(t, repo, "general", false, uuid.New())

	other := &models.Channel{Name: "general", AdminID: uuid.New()}
	admin := &models.Membership{AccountID: other.AdminID, Role: models.RoleAdmin, Status: models.StatusApproved}
	err := repo.CreateChannel(ctx, other, admin)
	assert.ErrorIs(t, err, ErrDuplicateName)

	// The losing transaction must leave nothing behind, membership included.
	count, err := testDB.NewSelect().Model((*models.Membership)(nil)).
		Where("account_id = ?", admin.AccountID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func Test_PublicJoin(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	joinerID := uuid.New()

	ch := mustCreateChannel(t, repo, "general", false, adminID)

	m, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID,
		AccountID: joinerID,
		Role:      models.RoleMember,
		Status:    models.StatusApproved,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, m.Status)
	assert.Contains(t, memberSet(t, repo, ch.ID), joinerID, "approved join lands in the member set")
}

func Test_PrivateJoin_PendingLeavesMemberSetUntouched(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	joinerID := uuid.New()

	ch := mustCreateChannel(t, repo, "secret", true, adminID)

	m, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID,
		AccountID: joinerID,
		Role:      models.RoleMember,
		Status:    models.StatusPending,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, m.Status)
	assert.Equal(t, []uuid.UUID{adminID}, memberSet(t, repo, ch.ID))
}

func Test_CreateMembership_RaceReturnsExisting(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	joinerID := uuid.New()

	ch := mustCreateChannel(t, repo, "secret", true, adminID)

	first, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID, AccountID: joinerID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	// Second insert for the same pair loses the conditional write and gets
	// the authoritative existing row back.
	second, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID, AccountID: joinerID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.JoinedAt.UTC(), second.JoinedAt.UTC())

	count, err := testDB.NewSelect().Model((*models.Membership)(nil)).
		Where("channel_id = ? AND account_id = ?", ch.ID, joinerID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one membership per (channel, account) pair")
}

func Test_DecideMembership_Approve(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	joinerID := uuid.New()

	ch := mustCreateChannel(t, repo, "secret", true, adminID)
	_, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID, AccountID: joinerID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	m, err := repo.DecideMembership(ctx, ch.ID, joinerID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, m.Status)
	assert.Contains(t, memberSet(t, repo, ch.ID), joinerID)

	// Terminal state reached: the opposite decision must fail as a no-op.
	_, err = repo.DecideMembership(ctx, ch.ID, joinerID, false)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	assert.Contains(t, memberSet(t, repo, ch.ID), joinerID, "member set unchanged by the failed decision")
}

func Test_DecideMembership_Reject(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	joinerID := uuid.New()

	ch := mustCreateChannel(t, repo, "secret", true, adminID)
	_, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID, AccountID: joinerID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	m, err := repo.DecideMembership(ctx, ch.ID, joinerID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, m.Status)
	assert.NotContains(t, memberSet(t, repo, ch.ID), joinerID)

	_, err = repo.DecideMembership(ctx, ch.ID, joinerID, true)
	assert.ErrorIs(t, err, ErrAlreadyDecided, "rejected is terminal")
}

func Test_DecideMembership_NoRecord(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)

	ch := mustCreateChannel(t, repo, "secret", true, uuid.New())
	_, err := repo.DecideMembership(ctx, ch.ID, uuid.New(), true)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func Test_ListApprovedForAccount(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	accountID := uuid.New()

	joined := mustCreateChannel(t, repo, "general", false, adminID)
	pending := mustCreateChannel(t, repo, "secret", true, adminID)
	mustCreateChannel(t, repo, "other", false, adminID)

	_, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: joined.ID, AccountID: accountID, Role: models.RoleMember, Status: models.StatusApproved,
	}, true)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, &models.Membership{
		ChannelID: pending.ID, AccountID: accountID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	chs, err := repo.ListApprovedForAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, chs, 1)
	assert.Equal(t, joined.ID, chs[0].ID)
}

func Test_ListPendingForAdmin(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewChannelRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	otherAdminID := uuid.New()

	mine := mustCreateChannel(t, repo, "secret", true, adminID)
	theirs := mustCreateChannel(t, repo, "elsewhere", true, otherAdminID)

	firstJoiner := uuid.New()
	secondJoiner := uuid.New()
	for _, accountID := range []uuid.UUID{firstJoiner, secondJoiner} {
		_, err := repo.CreateMembership(ctx, &models.Membership{
			ChannelID: mine.ID, AccountID: accountID, Role: models.RoleMember, Status: models.StatusPending,
		}, false)
		require.NoError(t, err)
	}
	_, err := repo.CreateMembership(ctx, &models.Membership{
		ChannelID: theirs.ID, AccountID: uuid.New(), Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	ms, err := repo.ListPendingForAdmin(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, ms, 2, "one entry per pending membership, only for administered channels")
	assert.Equal(t, firstJoiner, ms[0].AccountID, "oldest request first")
	require.NotNil(t, ms[0].Channel)
	assert.Equal(t, "secret", ms[0].Channel.Name)
}

func Test_InsertMessage(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	channels := NewChannelRepository(testDB, testScope, testLogger)
	messages := NewMessageRepository(testDB, testScope, testLogger)
	adminID := uuid.New()

	ch := mustCreateChannel(t, channels, "general", false, adminID)

	msg := &models.Message{
		ChannelID:  ch.ID,
		SenderID:   adminID,
		SenderName: "Jane",
		Body:       "hello",
	}
	require.NoError(t, messages.InsertMessage(ctx, msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Positive(t, msg.Seq)
	assert.False(t, msg.SentAt.IsZero())
}

func Test_InsertMessage_NonMemberRejected(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	channels := NewChannelRepository(testDB, testScope, testLogger)
	messages := NewMessageRepository(testDB, testScope, testLogger)

	ch := mustCreateChannel(t, channels, "general", false, uuid.New())

	err := messages.InsertMessage(ctx, &models.Message{
		ChannelID:  ch.ID,
		SenderID:   uuid.New(),
		SenderName: "Drifter",
		Body:       "hello",
	})
	assert.ErrorIs(t, err, ErrSenderNotApproved)

	count, err := testDB.NewSelect().Model((*models.Message)(nil)).
		Where("channel_id = ?", ch.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "stream length unchanged")
}

func Test_InsertMessage_PendingSenderRejected(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	channels := NewChannelRepository(testDB, testScope, testLogger)
	messages := NewMessageRepository(testDB, testScope, testLogger)
	adminID := uuid.New()
	pendingID := uuid.New()

	ch := mustCreateChannel(t, channels, "secret", true, adminID)
	_, err := channels.CreateMembership(ctx, &models.Membership{
		ChannelID: ch.ID, AccountID: pendingID, Role: models.RoleMember, Status: models.StatusPending,
	}, false)
	require.NoError(t, err)

	err = messages.InsertMessage(ctx, &models.Message{
		ChannelID: ch.ID, SenderID: pendingID, SenderName: "Eager", Body: "let me in",
	})
	assert.ErrorIs(t, err, ErrSenderNotApproved)
}

func Test_ListMessages_OrderAndCursor(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	channels := NewChannelRepository(testDB, testScope, testLogger)
	messages := NewMessageRepository(testDB, testScope, testLogger)
	adminID := uuid.New()

	ch := mustCreateChannel(t, channels, "general", false, adminID)

	for _, body := range []string{"first", "second", "third"} {
		require.NoError(t, messages.InsertMessage(ctx, &models.Message{
			ChannelID: ch.ID, SenderID: adminID, SenderName: "Jane", Body: body,
		}))
	}

	all, err := messages.ListMessages(ctx, ch.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Body)
	assert.Equal(t, "third", all[2].Body)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].SentAt.Before(all[i-1].SentAt), "timestamps non-decreasing")
		assert.Greater(t, all[i].Seq, all[i-1].Seq)
	}

	tail, err := messages.ListMessages(ctx, ch.ID, all[1].Seq)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "third", tail[0].Body)
}
