//go:build integration

package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/domain"
	"github.com/maitriconnect/maitri-api/internal/persistence"
	"github.com/maitriconnect/maitri-api/internal/repository"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

var (
	sharedOnce    sync.Once
	sharedInitErr error
	sharedPool    *pgxpool.Pool
	sharedCtr     *postgres.PostgresContainer
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedCtr != nil {
		_ = sharedCtr.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ctr, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("maitri"),
			postgres.WithUsername("maitri"),
			postgres.WithPassword("maitri"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedCtr = ctr

		dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		if err := persistence.MigrateUp(dsn, zap.NewNop()); err != nil {
			sharedInitErr = err
			return
		}
		sharedPool, sharedInitErr = pgxpool.New(ctx, dsn)
	})
	require.NoError(t, sharedInitErr)

	_, err := sharedPool.Exec(context.Background(), `TRUNCATE events, users CASCADE`)
	require.NoError(t, err)
	return sharedPool
}

func createUser(t *testing.T, repo repository.UserRepository, first, email string) *domain.User {
	t.Helper()
	u := &domain.User{FirstName: first, LastName: "Test", Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createEvent(t *testing.T, repo repository.EventRepository, organizerID, date string, status domain.EventStatus) *domain.Event {
	t.Helper()
	flyer := "/uploads/flyer-x.png"
	e := &domain.Event{
		Title:       "Navratri Garba",
		Description: "Dance night",
		Date:        date,
		Time:        "19:30",
		Location:    "Civic Centre",
		Category:    "Cultural",
		ImageURL:    &flyer,
		OrganizerID: organizerID,
		Status:      status,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestUserRepository(t *testing.T) {
	pool := setupPostgres(t)
	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	u := createUser(t, repo, "Asha", "asha@example.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)

	dup := &domain.User{FirstName: "Other", Email: "ASHA@example.com", PasswordHash: "x"}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)

	got, err := repo.GetByEmail(ctx, "Asha@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	mobile := "9876543210"
	got.Profile.Mobile = &mobile
	got.Profile.Languages = []string{"Hindi", "Tamil"}
	require.NoError(t, repo.UpdateProfile(ctx, got))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile.Mobile)
	assert.Equal(t, mobile, *got.Profile.Mobile)
	assert.Equal(t, []string{"Hindi", "Tamil"}, got.Profile.Languages)

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok-1", expires))
	byToken, err := repo.GetByResetToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)
	require.NoError(t, repo.ClearResetToken(ctx, u.ID))
	_, err = repo.GetByResetToken(ctx, "tok-1")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	admin, err := repo.SetRole(ctx, "asha@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	err = repo.UpdatePassword(ctx, "00000000-0000-0000-0000-000000000000", "x")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}

func TestEventRepository(t *testing.T) {
	pool := setupPostgres(t)
	users := repository.NewUserRepository(pool)
	repo := repository.NewEventRepository(pool)
	ctx := context.Background()

	owner := createUser(t, users, "Asha", "asha@example.com")
	other := createUser(t, users, "Kiran", "kiran@example.com")

	later := createEvent(t, repo, owner.ID, "2025-12-01", domain.EventStatusApproved)
	sooner := createEvent(t, repo, owner.ID, "2025-10-01", domain.EventStatusApproved)
	pending := createEvent(t, repo, other.ID, "2025-09-01", domain.EventStatusPending)
	assert.Equal(t, "19:30", later.Time)

	public, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, sooner.ID, public[0].ID)
	assert.Equal(t, later.ID, public[1].ID)

	owned, err := repo.ListOwned(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].Organizer.FirstName)

	detail, err := repo.Get(ctx, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Organizer.Email)
	assert.Equal(t, "kiran@example.com", *detail.Organizer.Email)

	ownerID, err := repo.OwnerOf(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, ownerID)

	updated, previous, err := repo.SetStatus(ctx, pending.ID, domain.EventStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPending, previous)
	assert.Equal(t, domain.EventStatusApproved, updated.Status)

	edit := *later
	edit.Title = "Navratri Garba Night"
	edit.ImageURL = nil
	edit.Status = domain.EventStatusPending
	require.NoError(t, repo.Update(ctx, &edit))
	require.NotNil(t, edit.ImageURL)
	assert.Equal(t, "/uploads/flyer-x.png", *edit.ImageURL)

	stranger := *sooner
	stranger.OrganizerID = other.ID
	assert.True(t, errors.Is(repo.Update(ctx, &stranger), pgx.ErrNoRows))

	_, err = repo.Delete(ctx, sooner.ID, other.ID)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	deleted, err := repo.Delete(ctx, sooner.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, sooner.ID, deleted.ID)

	_, err = repo.DeleteAny(ctx, pending.ID)
	require.NoError(t, err)
	_, err = repo.Get(ctx, pending.ID)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}
