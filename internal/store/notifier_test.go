package store

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"parley/config"
	"parley/pkg/logger"
)

var (
	testDB     *bun.DB
	testScope  = Scope{AppID: "test-app"}
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

	code := m.Run()

	testDB.Close()

	os.Exit(code)
}

// newTestNotifier builds an unstarted notifier; tests subscribe first and
// then Start, so the initial listener-up signal is never missed.
func newTestNotifier(t *testing.T, scope Scope) *Notifier {
	t.Helper()
	n := NewNotifier(testDB, scope, config.SyncConfig{
		RetryMin: 50 * time.Millisecond,
		RetryMax: time.Second,
	}, testLogger)
	t.Cleanup(n.Stop)
	return n
}

// awaitUp blocks until the stream reports the listener established.
func awaitUp(t *testing.T, sub EventStream) {
	t.Helper()
	select {
	case err := <-sub.Down():
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("listener never came up")
	}
}

func recvEvent(t *testing.T, sub EventStream) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "event stream closed unexpectedly")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func Test_Notifier_Roundtrip(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifier(t, testScope)

	sub := n.Subscribe(nil)
	defer sub.Close()
	n.Start(ctx)
	awaitUp(t, sub)

	want := Event{
		Collection: CollectionMessages,
		Op:         OpAdd,
		ChannelID:  uuid.New(),
		Seq:        42,
	}
	require.NoError(t, Notify(ctx, testDB, testScope, want))

	got := recvEvent(t, sub)
	assert.Equal(t, want, got)
}

func Test_Notifier_MatchFiltering(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifier(t, testScope)

	channelID := uuid.New()
	matched := n.Subscribe(func(ev Event) bool {
		return ev.Collection == CollectionMessages && ev.ChannelID == channelID
	})
	defer matched.Close()
	all := n.Subscribe(nil)
	defer all.Close()
	n.Start(ctx)
	awaitUp(t, matched)
	awaitUp(t, all)

	require.NoError(t, Notify(ctx, testDB, testScope, Event{
		Collection: CollectionMemberships, Op: OpModify, ChannelID: channelID,
	}))
	require.NoError(t, Notify(ctx, testDB, testScope, Event{
		Collection: CollectionMessages, Op: OpAdd, ChannelID: channelID, Seq: 1,
	}))

	// The filtered stream skips the membership event entirely; the unfiltered
	// one sees both in publish order.
	assert.Equal(t, CollectionMemberships, recvEvent(t, all).Collection)
	assert.Equal(t, CollectionMessages, recvEvent(t, all).Collection)

	got := recvEvent(t, matched)
	assert.Equal(t, CollectionMessages, got.Collection)
	assert.Equal(t, int64(1), got.Seq)
	select {
	case ev := <-matched.Events():
		t.Fatalf("unexpected event leaked through the filter: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func Test_Notifier_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifier(t, testScope)

	sub := n.Subscribe(nil)
	defer sub.Close()
	n.Start(ctx)
	awaitUp(t, sub)

	otherScope := Scope{AppID: "other-app"}
	require.NoError(t, Notify(ctx, testDB, otherScope, Event{
		Collection: CollectionChannels, Op: OpAdd,
	}))
	require.NoError(t, Notify(ctx, testDB, testScope, Event{
		Collection: CollectionMessages, Op: OpAdd, Seq: 7,
	}))

	// Only the event published on this scope's channel arrives.
	got := recvEvent(t, sub)
	assert.Equal(t, CollectionMessages, got.Collection)
	assert.Equal(t, int64(7), got.Seq)
}

func Test_Notifier_CloseReleasesOnlyThatSubscriber(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifier(t, testScope)

	first := n.Subscribe(nil)
	second := n.Subscribe(nil)
	defer second.Close()
	n.Start(ctx)
	awaitUp(t, first)
	awaitUp(t, second)

	first.Close()
	_, ok := <-first.Events()
	assert.False(t, ok, "closed stream drains immediately")
	first.Close() // idempotent

	require.NoError(t, Notify(ctx, testDB, testScope, Event{
		Collection: CollectionChannels, Op: OpModify,
	}))
	assert.Equal(t, CollectionChannels, recvEvent(t, second).Collection)
}
