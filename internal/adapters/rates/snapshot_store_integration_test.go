//go:build integration

package rates

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/p2p_ledger/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisSnapshotStore_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = c.Terminate(context.Background()) }()

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	client, closer, err := cache.New(ctx, cache.Config{Addr: endpoint})
	require.NoError(t, err)
	defer closer()

	store := NewRedisSnapshotStore(client, "", time.Hour)
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := snapshotAt(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), "0.92")
	require.NoError(t, store.Save(ctx, want))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Rates["EUR"].Equal(want.Rates["EUR"]))
	assert.True(t, got.FetchedAt.Equal(want.FetchedAt))
}
