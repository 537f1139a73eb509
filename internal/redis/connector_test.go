package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/retry"
)

func TestNewGivesUpOnUnreachableServer(t *testing.T) {
	client, err := New(context.Background(), ConnectOptions{
		// Port 1 is reserved and refuses connections on any sane host.
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		Retry: retry.Policy{
			ConnectTimeout: 200 * time.Millisecond,
			RetryInterval:  10 * time.Millisecond,
			MaxWait:        20 * time.Millisecond,
			PingTimeout:    50 * time.Millisecond,
		},
	}, logger.Nop())

	require.Error(t, err)
	require.Nil(t, client)
}
