package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

func fastPolicy() Policy {
	return Policy{
		ConnectTimeout: 200 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectSucceedsAfterRetries(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := Connect(context.Background(), "test", "localhost:1", fastPolicy(), ping, logger.Nop()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping called %d times, want 3", calls)
	}
}

func TestConnectTimesOut(t *testing.T) {
	ping := func(ctx context.Context) error { return errors.New("connection refused") }

	err := Connect(context.Background(), "test", "localhost:1", fastPolicy(), ping, logger.Nop())
	if err == nil {
		t.Fatal("Connect() error = nil, want timeout error")
	}
	if !strings.Contains(err.Error(), "test unavailable at localhost:1") {
		t.Errorf("Connect() error = %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
		ok     bool
	}{
		{name: "valid", mutate: func(p *Policy) {}, ok: true},
		{name: "zero connect timeout", mutate: func(p *Policy) { p.ConnectTimeout = 0 }},
		{name: "zero retry interval", mutate: func(p *Policy) { p.RetryInterval = 0 }},
		{name: "zero max wait", mutate: func(p *Policy) { p.MaxWait = 0 }},
		{name: "zero ping timeout", mutate: func(p *Policy) { p.PingTimeout = 0 }},
		{name: "negative threshold", mutate: func(p *Policy) { p.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fastPolicy()
			tt.mutate(&p)
			if err := p.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
