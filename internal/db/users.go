package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jcoeder/video-archive/pkg/utils/passwords"
)

const userColumns = `id, username, email, password, is_admin, storage_id, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.IsAdmin, &u.StorageID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// NewUserParams contains the parameters for creating a new user
type NewUserParams struct {
	Username string
	Email    string
	Password string // plaintext password
	IsAdmin  bool
}

// NewUser creates a new user with a hashed password and a fresh storage
// namespace id.
func (q *Queries) NewUser(ctx context.Context, params NewUserParams) (*User, error) {
	hashedPassword, err := passwords.NewPassword(passwords.PasswordInput{
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password, is_admin, storage_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		NewUUID(), params.Username, TextOrNull(params.Email), hashedPassword, params.IsAdmin, NewUUID())
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (*User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByUsername fetches a user by username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// UsernameTaken reports whether a username is already registered.
func (q *Queries) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken)
	return taken, err
}

// CountUsers returns the total number of accounts.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

// ListUsers returns all accounts ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserPassword replaces a user's credential hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id pgtype.UUID, plaintext string) error {
	hashed, err := passwords.NewPassword(passwords.PasswordInput{Password: plaintext})
	if err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, hashed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteUser removes an account. Videos, categories, and category links
// cascade in the schema; the caller removes the on-disk namespace.
func (q *Queries) DeleteUser(ctx context.Context, id pgtype.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
