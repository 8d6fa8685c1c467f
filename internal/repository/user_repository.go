package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	ClearResetToken(ctx context.Context, id string) error
	SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id::text, first_name, last_name, email, password_hash, role,
        mobile, bio, address, country, state, city, pincode, languages, profile_pic,
        reset_password_token, reset_password_expires, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id::text, created_at`

	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	return r.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token=$1`, token)
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET first_name=$1, last_name=$2, email=$3, mobile=$4, bio=$5, address=$6,
            country=$7, state=$8, city=$9, pincode=$10, languages=$11,
            profile_pic=COALESCE($12, profile_pic)
        WHERE id=$13
        RETURNING profile_pic`

	p := user.Profile
	return r.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		p.Mobile,
		p.Bio,
		p.Address,
		p.Country,
		p.State,
		p.City,
		p.Pincode,
		p.Languages,
		user.ProfilePic,
		user.ID,
	).Scan(&user.ProfilePic)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
}

func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.execOne(ctx, `
        UPDATE users SET reset_password_token=$1, reset_password_expires=$2
        WHERE id=$3`, token, expiresAt, id)
}

func (r *userRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.execOne(ctx, `
        UPDATE users SET reset_password_token=NULL, reset_password_expires=NULL
        WHERE id=$1`, id)
}

func (r *userRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	return r.fetchSingle(ctx, `
        UPDATE users SET role=$1 WHERE LOWER(email)=LOWER($2)
        RETURNING `+userColumns, role, email)
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Profile.Mobile,
		&user.Profile.Bio,
		&user.Profile.Address,
		&user.Profile.Country,
		&user.Profile.State,
		&user.Profile.City,
		&user.Profile.Pincode,
		&user.Profile.Languages,
		&user.ProfilePic,
		&user.ResetToken,
		&user.ResetExpires,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
