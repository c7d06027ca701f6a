package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const (
	userColumns        = `id, email, display_name, password_hash, roles, created_at, updated_at, last_login`
	uniqueViolationSQL = "23505"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Wrapf(domain.ErrUserNotFound, "user %s", id)
	}
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Wrapf(domain.ErrUserNotFound, "email %s", email)
	}
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO users (id, email, display_name, password_hash, roles, created_at, updated_at, last_login)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.PasswordHash,
		nonNil(user.Roles),
		user.CreatedAt,
		user.UpdatedAt,
		nullTime(user.LastLogin),
	)
	return mapUserError(err, user.Email)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE users
	SET email = $2,
		display_name = $3,
		password_hash = $4,
		roles = $5,
		updated_at = $6,
		last_login = $7
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.PasswordHash,
		nonNil(user.Roles),
		user.UpdatedAt,
		nullTime(user.LastLogin),
	)
	if err != nil {
		return mapUserError(err, user.Email)
	}
	if tag.RowsAffected() == 0 {
		return domain.Wrapf(domain.ErrUserNotFound, "user %s", user.ID)
	}
	return nil
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Roles,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLogin,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func mapUserError(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationSQL {
		return domain.Wrapf(domain.ErrUserExists, "email %s", email)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
