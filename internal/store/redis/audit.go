package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

const (
	fieldKind  = "kind"
	fieldEvent = "event"
)

// AuditLog appends moderation events to a capped Redis stream.
type AuditLog struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewAuditLog creates an audit log on stream. maxLen <= 0 disables trimming.
func NewAuditLog(client *redis.Client, stream string, maxLen int64) *AuditLog {
	if stream == "" {
		stream = DefaultAuditStream
	}
	return &AuditLog{
		client: client,
		stream: StreamKey(stream),
		maxLen: max(maxLen, 0),
	}
}

// Stream returns the stream key events are written to.
func (a *AuditLog) Stream() string { return a.stream }

// Record appends ev, assigning an id when it has none.
func (a *AuditLog) Record(ctx context.Context, ev domain.ModerationEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal moderation event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: a.stream,
		MaxLen: a.maxLen,
		Approx: a.maxLen > 0,
		Values: map[string]interface{}{
			fieldKind:  string(ev.Kind),
			fieldEvent: string(data),
		},
	}
	if err := a.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append moderation event: %w", err)
	}
	return nil
}

// Recent returns up to n events, newest first. Entries that cannot be
// decoded are skipped.
func (a *AuditLog) Recent(ctx context.Context, n int64) ([]domain.ModerationEvent, error) {
	if n <= 0 {
		return []domain.ModerationEvent{}, nil
	}
	msgs, err := a.client.XRevRangeN(ctx, a.stream, "+", "-", n).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation events: %w", err)
	}

	events := make([]domain.ModerationEvent, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[fieldEvent].(string)
		if !ok {
			continue
		}
		var ev domain.ModerationEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Ping checks the Redis connection.
func (a *AuditLog) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
