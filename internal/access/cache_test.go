package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ms-checkin/internal/access"
	"ms-checkin/internal/models"
)

func TestTokenCacheRoundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := access.NewRedisTokenCache(client, time.Minute)

	// Miss before anything is cached.
	cached, err := cache.GetParticipant(context.Background(), "tok123")
	assert.NoError(t, err)
	assert.Nil(t, cached)

	participant := &models.Participant{
		ID:         "participant-1",
		EventID:    "event-1",
		Name:       "Ada Example",
		Email:      "ada@example.com",
		BadgeToken: "tok123",
	}
	assert.NoError(t, cache.SetParticipant(context.Background(), "tok123", participant))

	cached, err = cache.GetParticipant(context.Background(), "tok123")
	assert.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "participant-1", cached.ID)

	assert.NoError(t, cache.Invalidate(context.Background(), "tok123"))
	cached, err = cache.GetParticipant(context.Background(), "tok123")
	assert.NoError(t, err)
	assert.Nil(t, cached)
}

func TestTokenCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := access.NewRedisTokenCache(client, time.Minute)

	participant := &models.Participant{ID: "participant-1", BadgeToken: "tok123"}
	assert.NoError(t, cache.SetParticipant(context.Background(), "tok123", participant))

	mr.FastForward(2 * time.Minute)

	cached, err := cache.GetParticipant(context.Background(), "tok123")
	assert.NoError(t, err)
	assert.Nil(t, cached)
}

// TestTokenCacheIntegration exercises the cache against a real Redis container.
func TestTokenCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	cache := access.NewRedisTokenCache(client, time.Minute)

	participant := &models.Participant{
		ID:         "participant-1",
		EventID:    "event-1",
		Name:       "Ada Example",
		BadgeToken: "tok123",
	}
	require.NoError(t, cache.SetParticipant(ctx, "tok123", participant))

	cached, err := cache.GetParticipant(ctx, "tok123")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, participant.ID, cached.ID)
	assert.Equal(t, participant.Name, cached.Name)
}
