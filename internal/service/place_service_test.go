package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campusmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeRepoStub is a stub for repository.PlaceRepository.
type placeRepoStub struct {
	createFn          func(context.Context, *models.Place) error
	getByIDFn         func(context.Context, uint) (*models.Place, error)
	listFn            func(context.Context, string, int, int) ([]models.Place, error)
	updateOwnedFn     func(context.Context, uint, map[string]any, uint, bool) (int64, error)
	deleteOwnedFn     func(context.Context, uint, uint, bool) (int64, error)
	deleteOlderThanFn func(context.Context, time.Time) (int64, error)
}

func (s *placeRepoStub) Create(ctx context.Context, place *models.Place) error {
	return s.createFn(ctx, place)
}
func (s *placeRepoStub) GetByID(ctx context.Context, id uint) (*models.Place, error) {
	return s.getByIDFn(ctx, id)
}
func (s *placeRepoStub) List(ctx context.Context, category string, limit, offset int) ([]models.Place, error) {
	return s.listFn(ctx, category, limit, offset)
}
func (s *placeRepoStub) UpdateOwned(ctx context.Context, id uint, fields map[string]any, requesterID uint, isAdmin bool) (int64, error) {
	return s.updateOwnedFn(ctx, id, fields, requesterID, isAdmin)
}
func (s *placeRepoStub) DeleteOwned(ctx context.Context, id uint, requesterID uint, isAdmin bool) (int64, error) {
	return s.deleteOwnedFn(ctx, id, requesterID, isAdmin)
}
func (s *placeRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderThanFn(ctx, cutoff)
}

func noopPlaceRepo() *placeRepoStub {
	return &placeRepoStub{
		createFn:  func(_ context.Context, _ *models.Place) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Place, error) { return &models.Place{ID: id}, nil },
		listFn:    func(_ context.Context, _ string, _, _ int) ([]models.Place, error) { return nil, nil },
		updateOwnedFn: func(_ context.Context, _ uint, _ map[string]any, _ uint, _ bool) (int64, error) {
			return 1, nil
		},
		deleteOwnedFn:     func(_ context.Context, _, _ uint, _ bool) (int64, error) { return 1, nil },
		deleteOlderThanFn: func(_ context.Context, _ time.Time) (int64, error) { return 0, nil },
	}
}

// assertErrorCode asserts that err is an AppError with the given code.
func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func identity(id uint, admin bool) *models.Identity {
	return &models.Identity{UserID: id, Username: "u", IsAdmin: admin}
}

func TestPlaceService_Create_AnonymousPolicy(t *testing.T) {
	t.Parallel()

	input := CreatePlaceInput{Name: "Kiosk", Longitude: 29.01, Latitude: 41.02}

	t.Run("anonymous rejected when disabled", func(t *testing.T) {
		t.Parallel()
		svc := NewPlaceService(noopPlaceRepo(), false)
		_, err := svc.Create(context.Background(), nil, input)
		assertErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("anonymous allowed when enabled", func(t *testing.T) {
		t.Parallel()
		var created *models.Place
		repo := noopPlaceRepo()
		repo.createFn = func(_ context.Context, p *models.Place) error {
			created = p
			return nil
		}
		svc := NewPlaceService(repo, true)
		_, err := svc.Create(context.Background(), nil, input)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Nil(t, created.OwnerID)
	})

	t.Run("authenticated user becomes owner", func(t *testing.T) {
		t.Parallel()
		var created *models.Place
		repo := noopPlaceRepo()
		repo.createFn = func(_ context.Context, p *models.Place) error {
			created = p
			return nil
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Create(context.Background(), identity(5, false), input)
		require.NoError(t, err)
		require.NotNil(t, created.OwnerID)
		assert.Equal(t, uint(5), *created.OwnerID)
	})
}

func TestPlaceService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPlaceService(noopPlaceRepo(), false)
	ctx := context.Background()
	requester := identity(1, false)

	tests := []struct {
		name  string
		input CreatePlaceInput
	}{
		{"empty name", CreatePlaceInput{Longitude: 29, Latitude: 41}},
		{"whitespace name", CreatePlaceInput{Name: "   ", Longitude: 29, Latitude: 41}},
		{"name too long", CreatePlaceInput{Name: strings.Repeat("x", 121), Longitude: 29, Latitude: 41}},
		{"longitude too small", CreatePlaceInput{Name: "P", Longitude: -180.01, Latitude: 41}},
		{"longitude too large", CreatePlaceInput{Name: "P", Longitude: 180.01, Latitude: 41}},
		{"latitude too small", CreatePlaceInput{Name: "P", Longitude: 29, Latitude: -90.01}},
		{"latitude too large", CreatePlaceInput{Name: "P", Longitude: 29, Latitude: 90.01}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(ctx, requester, tc.input)
			assertErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestPlaceService_Create_Defaults(t *testing.T) {
	t.Parallel()

	var created *models.Place
	repo := noopPlaceRepo()
	repo.createFn = func(_ context.Context, p *models.Place) error {
		created = p
		return nil
	}
	svc := NewPlaceService(repo, false)

	_, err := svc.Create(context.Background(), identity(1, false), CreatePlaceInput{
		Name:      "  Corner cafe  ",
		Longitude: 29.02,
		Latitude:  41.05,
	})
	require.NoError(t, err)
	assert.Equal(t, "Corner cafe", created.Name)
	assert.Equal(t, models.CategoryOther, created.Category)

	// Boundary coordinates are valid.
	_, err = svc.Create(context.Background(), identity(1, false), CreatePlaceInput{
		Name: "Edge", Longitude: 180, Latitude: -90,
	})
	assert.NoError(t, err)
}

func TestPlaceService_Update_Authorization(t *testing.T) {
	t.Parallel()

	name := "new name"
	input := UpdatePlaceInput{Name: &name}
	ownerID := uint(10)

	t.Run("anonymous gets unauthenticated", func(t *testing.T) {
		t.Parallel()
		svc := NewPlaceService(noopPlaceRepo(), false)
		_, err := svc.Update(context.Background(), nil, 1, input)
		assertErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("missing place reports not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.updateOwnedFn = func(_ context.Context, _ uint, _ map[string]any, _ uint, _ bool) (int64, error) {
			return 0, nil
		}
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Place, error) {
			return nil, models.NewNotFoundError("Place", id)
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Update(context.Background(), identity(1, false), 1, input)
		assertErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("existing foreign place reports forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.updateOwnedFn = func(_ context.Context, _ uint, _ map[string]any, _ uint, _ bool) (int64, error) {
			return 0, nil
		}
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Place, error) {
			return &models.Place{ID: id, OwnerID: &ownerID}, nil
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Update(context.Background(), identity(1, false), 1, input)
		assertErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("ownerless place reports forbidden for non-admin", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.updateOwnedFn = func(_ context.Context, _ uint, _ map[string]any, _ uint, _ bool) (int64, error) {
			return 0, nil
		}
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Place, error) {
			return &models.Place{ID: id}, nil
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Update(context.Background(), identity(1, false), 1, input)
		assertErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("owner update succeeds", func(t *testing.T) {
		t.Parallel()
		var gotFields map[string]any
		repo := noopPlaceRepo()
		repo.updateOwnedFn = func(_ context.Context, _ uint, fields map[string]any, requesterID uint, isAdmin bool) (int64, error) {
			gotFields = fields
			assert.Equal(t, uint(10), requesterID)
			assert.False(t, isAdmin)
			return 1, nil
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Update(context.Background(), identity(10, false), 1, input)
		require.NoError(t, err)
		assert.Equal(t, "new name", gotFields["name"])
	})

	t.Run("admin flag is forwarded", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.updateOwnedFn = func(_ context.Context, _ uint, _ map[string]any, _ uint, isAdmin bool) (int64, error) {
			assert.True(t, isAdmin)
			return 1, nil
		}
		svc := NewPlaceService(repo, false)
		_, err := svc.Update(context.Background(), identity(99, true), 1, input)
		assert.NoError(t, err)
	})
}

func TestPlaceService_Update_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPlaceService(noopPlaceRepo(), false)
	requester := identity(1, false)
	empty := ""
	blank := "   "

	t.Run("no fields", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Update(context.Background(), requester, 1, UpdatePlaceInput{})
		assertErrorCode(t, err, models.CodeValidation)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Update(context.Background(), requester, 1, UpdatePlaceInput{Name: &blank})
		assertErrorCode(t, err, models.CodeValidation)
	})

	t.Run("empty category", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Update(context.Background(), requester, 1, UpdatePlaceInput{Category: &empty})
		assertErrorCode(t, err, models.CodeValidation)
	})
}

func TestPlaceService_Delete(t *testing.T) {
	t.Parallel()

	ownerID := uint(10)

	t.Run("anonymous gets unauthenticated", func(t *testing.T) {
		t.Parallel()
		svc := NewPlaceService(noopPlaceRepo(), false)
		err := svc.Delete(context.Background(), nil, 1)
		assertErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		t.Parallel()
		svc := NewPlaceService(noopPlaceRepo(), false)
		err := svc.Delete(context.Background(), identity(10, false), 1)
		assert.NoError(t, err)
	})

	t.Run("repeat delete reports not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.deleteOwnedFn = func(_ context.Context, _, _ uint, _ bool) (int64, error) { return 0, nil }
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Place, error) {
			return nil, models.NewNotFoundError("Place", id)
		}
		svc := NewPlaceService(repo, false)
		err := svc.Delete(context.Background(), identity(10, false), 1)
		assertErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("foreign place reports forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPlaceRepo()
		repo.deleteOwnedFn = func(_ context.Context, _, _ uint, _ bool) (int64, error) { return 0, nil }
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Place, error) {
			return &models.Place{ID: id, OwnerID: &ownerID}, nil
		}
		svc := NewPlaceService(repo, false)
		err := svc.Delete(context.Background(), identity(1, false), 1)
		assertErrorCode(t, err, models.CodeForbidden)
	})
}
