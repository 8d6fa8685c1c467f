// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maitriconnect/maitri-api/internal/domain"
	"github.com/maitriconnect/maitri-api/internal/repository"
)

var (
	_ repository.UserRepository  = (*Users)(nil)
	_ repository.EventRepository = (*Events)(nil)
)

// Users is a map backed UserRepository. Lookups return pgx.ErrNoRows like Postgres does.
type Users struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	clock time.Time
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[string]domain.User{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Add inserts a user and panics on failure.
func (f *Users) Add(first, email string, role domain.Role, hash string) domain.User {
	u := &domain.User{FirstName: first, Email: email, Role: role, PasswordHash: hash}
	if err := f.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return *u
}

func (f *Users) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"users_email_lower_idx\""}
		}
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	user.ID = uuid.NewString()
	f.clock = f.clock.Add(time.Second)
	user.CreatedAt = f.clock
	f.byID[user.ID] = *user
	return nil
}

func (f *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (f *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *Users) UpdateProfile(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.FirstName, stored.LastName, stored.Email = user.FirstName, user.LastName, user.Email
	stored.Profile = user.Profile
	if user.ProfilePic != nil {
		stored.ProfilePic = user.ProfilePic
	}
	user.ProfilePic = stored.ProfilePic
	f.byID[user.ID] = stored
	return nil
}

func (f *Users) UpdatePassword(_ context.Context, id, hash string) error {
	return f.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (f *Users) SetResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	return f.mutate(id, func(u *domain.User) { u.ResetToken, u.ResetExpires = &token, &expiresAt })
}

func (f *Users) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ResetToken != nil && *u.ResetToken == token {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *Users) ClearResetToken(_ context.Context, id string) error {
	return f.mutate(id, func(u *domain.User) { u.ResetToken, u.ResetExpires = nil, nil })
}

func (f *Users) SetRole(_ context.Context, email string, role domain.Role) (*domain.User, error) {
	u, err := f.GetByEmail(context.Background(), email)
	if err != nil {
		return nil, err
	}
	if err := f.mutate(u.ID, func(u *domain.User) { u.Role = role }); err != nil {
		return nil, err
	}
	return f.GetByID(context.Background(), u.ID)
}

func (f *Users) mutate(id string, fn func(*domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&u)
	f.byID[id] = u
	return nil
}

// Events is a map backed EventRepository joined against Users.
type Events struct {
	mu    sync.Mutex
	rows  map[string]domain.Event
	users *Users
	clock time.Time

	// FailCreate makes Create return this error.
	FailCreate error
	// PublicListCalls counts ListPublic queries.
	PublicListCalls int
}

// NewEvents returns an empty store whose joins read from users.
func NewEvents(users *Users) *Events {
	return &Events{rows: map[string]domain.Event{}, users: users, clock: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
}

// Row returns the stored row without going through the repository contract.
func (f *Events) Row(id string) (domain.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	return e, ok
}

func (f *Events) ListPublic(_ context.Context) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PublicListCalls++
	out := []domain.Event{}
	for _, e := range f.rows {
		if e.Status == domain.EventStatusApproved {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date+out[i].Time < out[j].Date+out[j].Time })
	return out, nil
}

func (f *Events) ListOwned(_ context.Context, organizerID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Event{}
	for _, e := range f.rows {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Events) ListAll(ctx context.Context) ([]domain.EventWithOrganizer, error) {
	f.mu.Lock()
	rows := make([]domain.Event, 0, len(f.rows))
	for _, e := range f.rows {
		rows = append(rows, e)
	}
	f.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	out := make([]domain.EventWithOrganizer, 0, len(rows))
	for _, e := range rows {
		item := domain.EventWithOrganizer{Event: e}
		if u, err := f.users.GetByID(ctx, e.OrganizerID); err == nil {
			item.Organizer.FirstName = &u.FirstName
			item.Organizer.LastName = &u.LastName
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *Events) Get(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	e, ok := f.Row(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item := &domain.EventWithOrganizer{Event: e}
	if u, err := f.users.GetByID(ctx, e.OrganizerID); err == nil {
		item.Organizer = domain.Organizer{FirstName: &u.FirstName, LastName: &u.LastName, Email: &u.Email, Mobile: u.Profile.Mobile, ProfilePic: u.ProfilePic}
	}
	return item, nil
}

func (f *Events) OwnerOf(_ context.Context, id string) (string, error) {
	e, ok := f.Row(id)
	if !ok {
		return "", pgx.ErrNoRows
	}
	return e.OrganizerID, nil
}

func (f *Events) Create(_ context.Context, event *domain.Event) error {
	if f.FailCreate != nil {
		return f.FailCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = uuid.NewString()
	f.clock = f.clock.Add(time.Minute)
	event.CreatedAt = f.clock
	f.rows[event.ID] = *event
	return nil
}

func (f *Events) Update(_ context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[event.ID]
	if !ok || stored.OrganizerID != event.OrganizerID {
		return pgx.ErrNoRows
	}
	if event.ImageURL == nil {
		event.ImageURL = stored.ImageURL
	}
	event.CreatedAt = stored.CreatedAt
	f.rows[event.ID] = *event
	return nil
}

func (f *Events) SetStatus(_ context.Context, id string, status domain.EventStatus) (*domain.Event, domain.EventStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[id]
	if !ok {
		return nil, "", pgx.ErrNoRows
	}
	previous := stored.Status
	stored.Status = status
	f.rows[id] = stored
	return &stored, previous, nil
}

func (f *Events) Delete(_ context.Context, id, organizerID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[id]
	if !ok || stored.OrganizerID != organizerID {
		return nil, pgx.ErrNoRows
	}
	delete(f.rows, id)
	return &stored, nil
}

func (f *Events) DeleteAny(_ context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(f.rows, id)
	return &stored, nil
}

