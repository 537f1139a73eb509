package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/cardshelf/internal/catalog"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/export"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// Catalog is what the handlers call. *catalog.Service implements it.
type Catalog interface {
	ListCards(ctx context.Context, p catalog.ListParams) ([]domain.Card, error)
	GetCard(ctx context.Context, id uint) (*domain.Card, error)
	GetCardForModeration(ctx context.Context, id uint, credential string) (*domain.Card, error)
	CreateCard(ctx context.Context, f domain.CardFields) (*domain.Card, error)
	UpdateCard(ctx context.Context, id uint, f domain.CardFields, credential string) (*domain.Card, error)
	HideCard(ctx context.Context, id uint, credential string) error
	PurgeCard(ctx context.Context, id uint, credential string) error
	ReorderCards(ctx context.Context, entries []catalog.ReorderEntry, credential string) (*catalog.ReorderResult, error)
	CheckDuplicates(ctx context.Context, rawURL string) ([]domain.Card, error)
	ExportVisibleCards(ctx context.Context, credential string) (export.Table, error)
	ModerationEvents(ctx context.Context, n int64, credential string) ([]domain.ModerationEvent, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	RequestTimeout time.Duration    // per-request handler timeout
	MaxBodyBytes   int64            // request body cap, 0 = 1 MiB
	AllowedHosts   []string         // Host headers allowed to reach the API
	AllowedCIDRS   []string         // IPs allowed on readyz, purge, moderation and reload
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins    []string         // browser origins allowed to call the API
	RateBurst      int              // burst on public write routes
	RatePerMin     int              // refill per client IP per minute
	Catalog        Catalog          // card operations
	RedisClient    *redis.Client    // optional, pinged by readyz when set
	SeedTrigger    chan struct{}    // triggers a seed import, nil when no seed file is configured
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
