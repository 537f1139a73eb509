package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

func TestHideCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	card := f.create(t, "https://a.example.com", "A")

	require.NoError(t, f.svc.HideCard(ctx, card.ID, adminCred))
	assert.Empty(t, f.listNames(t, ListParams{}))
	assert.Equal(t, []string{"A"}, f.listNames(t, ListParams{IncludeHidden: true, Credential: adminCred}))

	hidden, err := f.svc.GetCardForModeration(ctx, card.ID, adminCred)
	require.NoError(t, err)

	require.NoError(t, f.svc.HideCard(ctx, card.ID, adminCred))
	again, err := f.svc.GetCardForModeration(ctx, card.ID, adminCred)
	require.NoError(t, err)
	assert.Equal(t, hidden.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, []domain.EventKind{domain.EventCreated, domain.EventHidden}, f.audit.kinds())
}

func TestHideCardErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	card := f.create(t, "https://a.example.com", "A")

	assert.ErrorIs(t, f.svc.HideCard(ctx, card.ID, editCred), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.HideCard(ctx, card.ID, ""), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.HideCard(ctx, 777, adminCred), domain.ErrNotFound)
	assert.Equal(t, []string{"A"}, f.listNames(t, ListParams{}))
}

func TestGetCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	card := f.create(t, "https://a.example.com", "A")

	got, err := f.svc.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)

	require.NoError(t, f.svc.HideCard(ctx, card.ID, adminCred))

	_, err = f.svc.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetCardForModeration(ctx, card.ID, editCred)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err = f.svc.GetCardForModeration(ctx, card.ID, adminCred)
	require.NoError(t, err)
	assert.False(t, got.Visible())
}

func TestPurgeCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	card := f.create(t, "https://a.example.com", "A")

	assert.ErrorIs(t, f.svc.PurgeCard(ctx, card.ID, adminCred), domain.ErrConflict)
	assert.ErrorIs(t, f.svc.PurgeCard(ctx, card.ID, editCred), domain.ErrUnauthorized)

	require.NoError(t, f.svc.HideCard(ctx, card.ID, adminCred))
	require.NoError(t, f.svc.PurgeCard(ctx, card.ID, adminCred))

	_, err := f.svc.GetCardForModeration(ctx, card.ID, adminCred)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.PurgeCard(ctx, card.ID, adminCred), domain.ErrNotFound)
	assert.Equal(t,
		[]domain.EventKind{domain.EventCreated, domain.EventHidden, domain.EventPurged},
		f.audit.kinds())
}

func TestPurgeHiddenBefore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	old := f.create(t, "https://old.example.com", "Old")
	recent := f.create(t, "https://recent.example.com", "Recent")
	f.create(t, "https://visible.example.com", "Visible")

	require.NoError(t, f.svc.HideCard(ctx, old.ID, adminCred))
	cutoff := f.clock.Peek().Add(500 * time.Millisecond)
	require.NoError(t, f.svc.HideCard(ctx, recent.ID, adminCred))

	purged, err := f.svc.PurgeHiddenBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	assert.Equal(t, []string{"Visible", "Recent"}, f.listNames(t, ListParams{IncludeHidden: true, Credential: adminCred}))
}

func TestPurgeHiddenBeforeStopsOnCancel(t *testing.T) {
	f := newFixture(t, Options{})
	card := f.create(t, "https://old.example.com", "Old")
	require.NoError(t, f.svc.HideCard(context.Background(), card.ID, adminCred))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	purged, err := f.svc.PurgeHiddenBefore(ctx, f.clock.Peek().Add(time.Hour))
	assert.Error(t, err)
	assert.Zero(t, purged)
}
