package store

import (
	"context"

	"computer-inventory-api/internal/models"
)

const userColumns = "id, username, name, password, pending_password_reset, created_at, updated_at"

// CreateUser inserts u, whose PasswordHash must already be set, and fills in
// its id and timestamps. ErrConflict is returned for a taken username.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	ts := now()
	q := db.Q(`
		INSERT INTO users (username, name, password, pending_password_reset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	args := []any{u.Username, u.Name, u.PasswordHash, u.PendingPasswordReset, ts, ts}

	var id int64
	err := db.QueryRowxContext(ctx, q, args...).Scan(&id)
	if isUniqueViolation(err) {
		err = ErrConflict
	}
	// never log the password hash
	logQuery(q, []any{u.Username, u.Name}, err)
	if err != nil {
		return err
	}

	u.ID = id
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

// UserByID returns the user with the given id or ErrNotFound
func (db *DB) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// UserByUsername returns the user with the given username or ErrNotFound
func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (db *DB) getUser(ctx context.Context, q string, arg any) (*models.User, error) {
	q = db.Q(q)
	var u models.User
	err := db.GetContext(ctx, &u, q, arg)
	if isNoRows(err) {
		err = ErrNotFound
	}
	logQuery(q, []any{arg}, err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
