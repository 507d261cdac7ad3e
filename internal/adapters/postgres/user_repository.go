package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/jmoiron/sqlx"
)

const selectUsers = `
	SELECT id, username, password, full_name, role, email, department,
	       is_active, last_login, created_at
	FROM users
`

// UserRepository implements ports.UserRepository using PostgreSQL
type UserRepository struct {
	db *sqlx.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := getOne(ctx, r.db, &user, "user", id, selectUsers+` WHERE id = $1`); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username, case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, selectUsers+` WHERE LOWER(username) = $1`, models.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// Create adds a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			username, password, full_name, role, email, department,
			is_active, last_login, created_at
		) VALUES (
			:username, :password, :full_name, :role, :email, :department,
			:is_active, :last_login, :created_at
		) RETURNING id
	`
	if err := insertReturningID(ctx, r.db, query, user, &user.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update applies fn to the locked user row and writes the result back
func (r *UserRepository) Update(ctx context.Context, id int64, fn func(*models.User) error) (*models.User, error) {
	var user models.User
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := getOne(ctx, tx, &user, "user", id, selectUsers+` WHERE id = $1 FOR UPDATE`); err != nil {
			return err
		}
		if err := fn(&user); err != nil {
			return err
		}
		query := `
			UPDATE users
			SET full_name = :full_name,
			    role = :role,
			    email = :email,
			    department = :department,
			    is_active = :is_active,
			    last_login = :last_login
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, &user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves all users in insertion order
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.db.SelectContext(ctx, &users, selectUsers+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
