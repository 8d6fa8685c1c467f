package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

// EventRepository encapsulates event persistence. Ownership-scoped writes return
// pgx.ErrNoRows when the row is missing or owned by someone else.
type EventRepository interface {
	ListPublic(ctx context.Context) ([]domain.Event, error)
	ListOwned(ctx context.Context, organizerID string) ([]domain.Event, error)
	ListAll(ctx context.Context) ([]domain.EventWithOrganizer, error)
	Get(ctx context.Context, id string) (*domain.EventWithOrganizer, error)
	OwnerOf(ctx context.Context, id string) (string, error)
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	SetStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, domain.EventStatus, error)
	Delete(ctx context.Context, id, organizerID string) (*domain.Event, error)
	DeleteAny(ctx context.Context, id string) (*domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `e.id::text, e.title, e.description,
        to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.event_time, 'HH24:MI'),
        e.location, e.category, e.image_url, e.external_reg_url,
        e.organizer_id::text, e.status, e.created_at`

func (r *eventRepository) ListPublic(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events e
        WHERE e.status = 'approved'
        ORDER BY e.event_date ASC, e.event_time ASC`
	return r.list(ctx, query)
}

func (r *eventRepository) ListOwned(ctx context.Context, organizerID string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events e
        WHERE e.organizer_id = $1
        ORDER BY e.created_at DESC`
	return r.list(ctx, query, organizerID)
}

func (r *eventRepository) ListAll(ctx context.Context) ([]domain.EventWithOrganizer, error) {
	const query = `SELECT ` + eventColumns + `, u.first_name, u.last_name
        FROM events e
        LEFT JOIN users u ON e.organizer_id = u.id
        ORDER BY e.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.EventWithOrganizer{}
	for rows.Next() {
		var item domain.EventWithOrganizer
		dest := append(eventDest(&item.Event), &item.Organizer.FirstName, &item.Organizer.LastName)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *eventRepository) Get(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	const query = `SELECT ` + eventColumns + `,
            u.first_name, u.last_name, u.email, u.mobile, u.profile_pic
        FROM events e
        LEFT JOIN users u ON e.organizer_id = u.id
        WHERE e.id = $1`

	var item domain.EventWithOrganizer
	o := &item.Organizer
	dest := append(eventDest(&item.Event), &o.FirstName, &o.LastName, &o.Email, &o.Mobile, &o.ProfilePic)
	if err := r.pool.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *eventRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.pool.QueryRow(ctx, `SELECT organizer_id::text FROM events WHERE id = $1`, id).Scan(&owner)
	return owner, err
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events AS e (title, description, event_date, event_time, location, category,
            image_url, external_reg_url, organizer_id, status)
        VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8, $9, $10)
        RETURNING ` + eventColumns
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		event.Category,
		event.ImageURL,
		event.ExternalRegURL,
		event.OrganizerID,
		event.Status,
	).Scan(eventDest(event)...)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events AS e SET title=$1, description=$2, event_date=$3::date, event_time=$4::time,
            location=$5, category=$6, external_reg_url=$7, image_url=COALESCE($8, e.image_url),
            status=$9
        WHERE e.id=$10 AND e.organizer_id=$11
        RETURNING ` + eventColumns
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		event.Category,
		event.ExternalRegURL,
		event.ImageURL,
		event.Status,
		event.ID,
		event.OrganizerID,
	).Scan(eventDest(event)...)
}

func (r *eventRepository) SetStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, domain.EventStatus, error) {
	const query = `
        UPDATE events AS e SET status=$1
        FROM events AS prev
        WHERE e.id=$2 AND prev.id=e.id
        RETURNING ` + eventColumns + `, prev.status`

	var (
		event    domain.Event
		previous domain.EventStatus
	)
	dest := append(eventDest(&event), &previous)
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(dest...); err != nil {
		return nil, "", err
	}
	return &event, previous, nil
}

func (r *eventRepository) Delete(ctx context.Context, id, organizerID string) (*domain.Event, error) {
	const query = `DELETE FROM events AS e WHERE e.id=$1 AND e.organizer_id=$2 RETURNING ` + eventColumns
	return r.fetchSingle(ctx, query, id, organizerID)
}

func (r *eventRepository) DeleteAny(ctx context.Context, id string) (*domain.Event, error) {
	const query = `DELETE FROM events AS e WHERE e.id=$1 RETURNING ` + eventColumns
	return r.fetchSingle(ctx, query, id)
}

func (r *eventRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, args...).Scan(eventDest(&event)...); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func eventDest(event *domain.Event) []any {
	return []any{
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Category,
		&event.ImageURL,
		&event.ExternalRegURL,
		&event.OrganizerID,
		&event.Status,
		&event.CreatedAt,
	}
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	result := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(eventDest(&event)...); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
