package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/testutil"
)

func newTestStore(t *testing.T, db *gorm.DB) (*Store, *testutil.Clock) {
	t.Helper()
	require.NoError(t, Migrate(context.Background(), db))
	clock := testutil.NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewStore(db, logger.Nop()).WithClock(clock.Now), clock
}

func fields(url, name string, subjects ...string) domain.CardFields {
	return domain.CardFields{URL: url, WebpageName: name, UsefulSubjects: subjects}
}

func names(cards []domain.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.WebpageName)
	}
	return out
}

func TestStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	thumb := "https://img.example.com/a.png"
	f := fields("https://a.example.com", "Alpha", "Math", "Art")
	f.Keyword = []string{"graphs"}
	f.ThumbnailURL = &thumb
	f.Category = "tools"

	created, err := s.Create(ctx, f, 0)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.ViewVisible, created.View)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.WebpageName)
	assert.Equal(t, domain.TextList{"Math", "Art"}, got.UsefulSubjects)
	assert.Equal(t, domain.TextList{"graphs"}, got.Keyword)
	assert.Equal(t, thumb, got.ThumbnailURL)
	assert.Equal(t, "tools", got.Category)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestStoreGetMissing(t *testing.T) {
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	_, err := s.Get(context.Background(), 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestStoreVisibleURLIndex(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	first, err := s.Create(ctx, fields("https://dup.example.com", "First"), 0)
	require.NoError(t, err)

	_, err = s.Create(ctx, fields("https://dup.example.com", "Second"), 0)
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	_, err = s.SetVisibility(ctx, first.ID, domain.ViewHidden)
	require.NoError(t, err)

	_, err = s.Create(ctx, fields("https://dup.example.com", "Second"), 0)
	assert.NoError(t, err)
}

func TestStoreUpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	c, err := s.Create(ctx, fields("https://a.example.com", "Alpha"), 0)
	require.NoError(t, err)

	f := fields("https://a.example.com/v2", "Alpha 2", "Science")
	updated, err := s.Update(ctx, c.ID, f)
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", updated.WebpageName)
	assert.Equal(t, domain.TextList{"Science"}, updated.UsefulSubjects)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	_, err = s.Update(ctx, 424242, f)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	_, err := s.Create(ctx, fields("https://a.example.com", "A"), 2)
	require.NoError(t, err)
	_, err = s.Create(ctx, fields("https://b.example.com", "B"), 1)
	require.NoError(t, err)
	_, err = s.Create(ctx, fields("https://c.example.com", "C"), 1) // newer than B, same position
	require.NoError(t, err)

	cards, err := s.List(ctx, domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(cards))
}

func TestStoreListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.SqliteDB(t)
	s, _ := newTestStore(t, db)

	desmos := fields("https://www.desmos.com", "Desmos Graphing", "Math")
	desmos.Category = "tools"
	_, err := s.Create(ctx, desmos, 0)
	require.NoError(t, err)

	phet := fields("https://phet.colorado.edu", "PhET", "Science", "Math")
	phet.UserSummary = "Interactive 100% free simulations"
	_, err = s.Create(ctx, phet, 0)
	require.NoError(t, err)

	legacy, err := s.Create(ctx, fields("https://legacy.example.com", "Old entry", "History"), 0)
	require.NoError(t, err)
	require.NoError(t, db.Exec("UPDATE edutech_cards SET ai_summary = ? WHERE id = ?", "Primary SOURCES archive", legacy.ID).Error)

	hidden, err := s.Create(ctx, fields("https://hidden.example.com", "Hidden graphing", "Math"), 0)
	require.NoError(t, err)
	_, err = s.SetVisibility(ctx, hidden.ID, domain.ViewHidden)
	require.NoError(t, err)

	tests := []struct {
		name string
		q    domain.Query
		want []string
	}{
		{name: "case-insensitive name search", q: domain.Query{Search: "GRAPHING"}, want: []string{"Desmos Graphing"}},
		{name: "summary search", q: domain.Query{Search: "simulations"}, want: []string{"PhET"}},
		{name: "legacy summary search", q: domain.Query{Search: "sources"}, want: []string{"Old entry"}},
		{name: "percent is literal", q: domain.Query{Search: "100%"}, want: []string{"PhET"}},
		{name: "underscore is literal", q: domain.Query{Search: "o_d"}, want: []string{}},
		{name: "category", q: domain.Query{Category: "tools"}, want: []string{"Desmos Graphing"}},
		{name: "subject membership", q: domain.Query{Subject: "Science"}, want: []string{"PhET"}},
		{name: "subject is exact", q: domain.Query{Subject: "Mat"}, want: []string{}},
		{name: "include hidden", q: domain.Query{Search: "graphing", IncludeHidden: true}, want: []string{"Hidden graphing", "Desmos Graphing"}},
		{name: "combined", q: domain.Query{Subject: "Math", Search: "phet"}, want: []string{"PhET"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := s.List(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(cards))
		})
	}
}

func TestStoreSearchNonASCIIName(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	_, err := s.Create(ctx, fields("https://ecole.example.com", "École Maths"), 0)
	require.NoError(t, err)

	for _, term := range []string{"École", "ÉCOLE", "cole maths", "MATHS"} {
		t.Run(term, func(t *testing.T) {
			cards, err := s.List(ctx, domain.Query{Search: term})
			require.NoError(t, err)
			assert.Equal(t, []string{"École Maths"}, names(cards))
		})
	}
}

func TestStoreSubjectIgnoresMalformedJSON(t *testing.T) {
	ctx := context.Background()
	db := testutil.SqliteDB(t)
	s, _ := newTestStore(t, db)

	broken, err := s.Create(ctx, fields("https://broken.example.com", "Broken"), 0)
	require.NoError(t, err)
	require.NoError(t, db.Exec("UPDATE edutech_cards SET useful_subjects = ? WHERE id = ?", "[Math", broken.ID).Error)
	_, err = s.Create(ctx, fields("https://ok.example.com", "Fine", "Math"), 0)
	require.NoError(t, err)

	cards, err := s.List(ctx, domain.Query{Subject: "Math"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fine"}, names(cards))

	got, err := s.Get(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Other{Raw: "[Math"}, got.UsefulSubjects)
}

func TestStoreListFallsBackWithoutSortOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.SqliteDB(t)

	require.NoError(t, db.Exec(`CREATE TABLE edutech_cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		webpage_name TEXT NOT NULL,
		user_summary TEXT NOT NULL DEFAULT '',
		useful_subjects TEXT,
		keyword TEXT,
		educational_meaning TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		ai_category TEXT NOT NULL DEFAULT '',
		ai_summary TEXT NOT NULL DEFAULT '',
		view INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL)`).Error)

	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, row := range []struct {
		name string
		at   time.Time
	}{{"older", older}, {"newer", newer}} {
		require.NoError(t, db.Exec(
			"INSERT INTO edutech_cards (url, webpage_name, view, created_at, updated_at) VALUES (?, ?, 1, ?, ?)",
			"https://"+row.name+".example.com", row.name, row.at, row.at).Error)
	}

	s := NewStore(db, logger.Nop())
	cards, err := s.List(ctx, domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, names(cards))
}

func TestStoreFindByHost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	for i, u := range []string{
		"https://SUB.example.com/a", "https://sub.example.com/b", "http://sub.example.com",
		"https://sub.example.com/c", "https://sub.example.com/d", "https://sub.example.com/e",
		"https://other.org/sub.example.com",
	} {
		_, err := s.Create(ctx, fields(u, "card"), i)
		require.NoError(t, err)
	}
	hidden, err := s.Create(ctx, fields("https://sub.example.com/hidden", "hidden"), -1)
	require.NoError(t, err)
	_, err = s.SetVisibility(ctx, hidden.ID, domain.ViewHidden)
	require.NoError(t, err)

	cards, err := s.FindByHost(ctx, "sub.example.com", 5)
	require.NoError(t, err)
	require.Len(t, cards, 5)
	assert.Equal(t, "https://SUB.example.com/a", cards[0].URL)
	for _, c := range cards {
		assert.True(t, c.Visible())
	}
}

func TestStoreSortOrders(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	_, ok, err := s.MaxSortOrder(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	a, err := s.Create(ctx, fields("https://a.example.com", "A"), 3)
	require.NoError(t, err)
	b, err := s.Create(ctx, fields("https://b.example.com", "B"), 7)
	require.NoError(t, err)

	highest, ok, err := s.MaxSortOrder(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, highest)

	missing, err := s.ApplySortOrders(ctx, []domain.SortPair{{ID: a.ID, SortOrder: 9}, {ID: 777, SortOrder: 1}, {ID: b.ID, SortOrder: 2}})
	require.NoError(t, err)
	assert.Equal(t, []uint{777}, missing)

	cards, err := s.List(ctx, domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(cards))

	require.NoError(t, s.SetSortOrder(ctx, a.ID, 0))
	assert.True(t, errors.Is(s.SetSortOrder(ctx, 888, 0), domain.ErrNotFound))
}

func TestStoreHiddenBeforeAndPurge(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, testutil.SqliteDB(t))

	a, err := s.Create(ctx, fields("https://a.example.com", "A"), 0)
	require.NoError(t, err)
	_, err = s.SetVisibility(ctx, a.ID, domain.ViewHidden)
	require.NoError(t, err)
	cutoff := clock.Peek().Add(500 * time.Millisecond)

	b, err := s.Create(ctx, fields("https://b.example.com", "B"), 0)
	require.NoError(t, err)
	_, err = s.SetVisibility(ctx, b.ID, domain.ViewHidden)
	require.NoError(t, err)

	stale, err := s.HiddenBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(stale))

	require.NoError(t, s.Purge(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(s.Purge(ctx, a.ID), domain.ErrNotFound))
}

func TestStoreExistsVisibleURL(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	a, err := s.Create(ctx, fields("https://a.example.com", "A"), 0)
	require.NoError(t, err)

	exists, err := s.ExistsVisibleURL(ctx, "https://a.example.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsVisibleURL(ctx, "https://a.example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreExistsURLIncludesHidden(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.SqliteDB(t))

	a, err := s.Create(ctx, fields("https://a.example.com", "A"), 0)
	require.NoError(t, err)
	_, err = s.SetVisibility(ctx, a.ID, domain.ViewHidden)
	require.NoError(t, err)

	exists, err := s.ExistsURL(ctx, "https://a.example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	visible, err := s.ExistsVisibleURL(ctx, "https://a.example.com", 0)
	require.NoError(t, err)
	assert.False(t, visible)

	exists, err = s.ExistsURL(ctx, "https://b.example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreCancelledContextIsStorageError(t *testing.T) {
	s, _ := newTestStore(t, testutil.SqliteDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx, domain.Query{})
	assert.True(t, errors.Is(err, domain.ErrStorage), "got %v", err)
}

func TestStorePostgres(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testutil.PostgresDB(t))

	_, err := s.Create(ctx, fields("https://pg.example.com", "PG", "Math"), 0)
	require.NoError(t, err)

	cards, err := s.List(ctx, domain.Query{Subject: "Math", Search: "pg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PG"}, names(cards))

	_, err = s.Create(ctx, fields("https://pg.example.com", "PG again"), 0)
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
}
