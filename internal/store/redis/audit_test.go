package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

const redisAddrEnv = "CARDS_TEST_REDIS_ADDR"

func newTestAuditLog(t *testing.T, maxLen int64) *AuditLog {
	t.Helper()
	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		t.Skipf("set %s to run redis integration tests", redisAddrEnv)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	log := NewAuditLog(client, "test:"+uuid.NewString(), maxLen)
	t.Cleanup(func() {
		_ = client.Del(context.Background(), log.Stream()).Err()
		_ = client.Close()
	})
	require.NoError(t, log.Ping(context.Background()))
	return log
}

func TestStreamKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "moderation", want: "cardshelf:moderation"},
		{in: "cardshelf:moderation", want: "cardshelf:moderation"},
		{in: "", want: "cardshelf:"},
	}
	for _, tt := range tests {
		if got := StreamKey(tt.in); got != tt.want {
			t.Errorf("StreamKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewAuditLogDefaults(t *testing.T) {
	log := NewAuditLog(nil, "", -5)
	assert.Equal(t, DefaultAuditStream, log.Stream())
	assert.Zero(t, log.maxLen)
}

func TestAuditLogRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	log := newTestAuditLog(t, 0)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, log.Record(ctx, domain.ModerationEvent{Kind: domain.EventCreated, CardID: 1, At: at}))
	require.NoError(t, log.Record(ctx, domain.ModerationEvent{Kind: domain.EventHidden, CardID: 1, At: at.Add(time.Minute)}))
	require.NoError(t, log.Record(ctx, domain.ModerationEvent{Kind: domain.EventReordered, BatchID: "b-1", At: at.Add(2 * time.Minute)}))

	events, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventReordered, events[0].Kind)
	assert.Equal(t, "b-1", events[0].BatchID)
	assert.Equal(t, domain.EventHidden, events[1].Kind)
	assert.NotEmpty(t, events[1].ID)
	assert.True(t, events[1].At.Equal(at.Add(time.Minute)))
}

func TestAuditLogRecentEmpty(t *testing.T) {
	log := newTestAuditLog(t, 0)
	events, err := log.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = log.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}
