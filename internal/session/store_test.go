package session

import (
	"context"
	"testing"
	"time"

	"campusmap/internal/models"
	"campusmap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	_, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	identity := models.Identity{UserID: 7, Username: "ayse", IsAdmin: true, Avatar: "https://cdn/x.png"}
	token, err := store.Create(ctx, identity)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity, *got)
}

func TestStore_TokensAreUnique(t *testing.T) {
	t.Parallel()

	_, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	a, err := store.Create(ctx, models.Identity{UserID: 1})
	require.NoError(t, err)
	b, err := store.Create(ctx, models.Identity{UserID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	srv, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, models.Identity{UserID: 7})
	require.NoError(t, err)

	srv.FastForward(2 * time.Hour)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SlidingExpiry(t *testing.T) {
	t.Parallel()

	srv, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, models.Identity{UserID: 7})
	require.NoError(t, err)

	// Keep touching the session just inside the TTL; it must stay alive past
	// the original deadline.
	for i := 0; i < 3; i++ {
		srv.FastForward(45 * time.Minute)
		_, err = store.Get(ctx, token)
		require.NoError(t, err)
	}
}

func TestStore_Destroy(t *testing.T) {
	t.Parallel()

	_, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, models.Identity{UserID: 7})
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Destroying again (or destroying garbage) is a no-op.
	assert.NoError(t, store.Destroy(ctx, token))
	assert.NoError(t, store.Destroy(ctx, "nonsense"))
}

func TestStore_Refresh(t *testing.T) {
	t.Parallel()

	_, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, models.Identity{UserID: 7, Avatar: "old"})
	require.NoError(t, err)

	require.NoError(t, store.Refresh(ctx, token, models.Identity{UserID: 7, Avatar: "new"}))

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Avatar)
}

func TestStore_Get_UnknownToken(t *testing.T) {
	t.Parallel()

	_, client := testutil.NewTestRedis(t)
	store := NewStore(client, time.Hour)

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}
