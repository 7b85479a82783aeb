package repository

import (
	"context"
	"testing"
	"time"

	"campusmap/internal/models"
	"campusmap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateAndList(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	comments := NewCommentRepository(db)
	places := NewPlaceRepository(db)
	ctx := context.Background()

	owner := seedPlaceOwner(t, db)
	place := newPlace(&owner.ID)
	require.NoError(t, places.Create(ctx, place))

	first := &models.Comment{Content: "first", PlaceID: place.ID, UserID: owner.ID}
	require.NoError(t, comments.Create(ctx, first))
	require.NotZero(t, first.ID)
	require.NotNil(t, first.User)
	assert.Equal(t, "owner", first.User.Username)

	// Force distinct creation times so ordering is observable.
	require.NoError(t, db.Model(first).UpdateColumn("created_at", time.Now().Add(-time.Minute)).Error)

	second := &models.Comment{Content: "second", PlaceID: place.ID, UserID: owner.ID}
	require.NoError(t, comments.Create(ctx, second))

	listed, err := comments.ListByPlace(ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Content)
	assert.Equal(t, "second", listed[1].Content)
	require.NotNil(t, listed[0].User)
	assert.Equal(t, "owner", listed[0].User.Username)
}

func TestCommentRepository_ListByPlace_Empty(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	comments := NewCommentRepository(db)

	listed, err := comments.ListByPlace(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
