package store

import (
	"database/sql"
	"fmt"

	"github.com/cashtrackr/cashtrackr/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var token sql.NullString
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Confirmed, &token, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		u.Token = &token.String
	}
	return &u, nil
}

const userCols = `id, name, email, password, confirmed, token, created_at, updated_at`

// Create inserts a new unconfirmed user with a pending confirmation code.
func (s *UserStore) Create(name, email, hashedPassword, code string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email, password, token) VALUES (?, ?, ?, ?)`,
		name, email, hashedPassword, code,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByToken returns the user whose pending one-time code matches, or nil.
func (s *UserStore) GetByToken(code string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE token = ?`, code)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return u, nil
}

// Confirm marks the account confirmed and clears the pending code.
func (s *UserStore) Confirm(id int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET confirmed = 1, token = NULL, updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	return nil
}

// SetToken overwrites the pending one-time code (forgot-password flow).
func (s *UserStore) SetToken(id int64, code string) error {
	_, err := s.db.Exec(
		`UPDATE users SET token = ?, updated_at = datetime('now') WHERE id = ?`,
		code, id,
	)
	if err != nil {
		return fmt.Errorf("set user token: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (s *UserStore) UpdatePassword(id int64, hashedPassword string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password = ?, updated_at = datetime('now') WHERE id = ?`,
		hashedPassword, id,
	)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

// ResetPassword stores a new password hash and clears the reset code.
func (s *UserStore) ResetPassword(id int64, hashedPassword string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password = ?, token = NULL, updated_at = datetime('now') WHERE id = ?`,
		hashedPassword, id,
	)
	if err != nil {
		return fmt.Errorf("reset user password: %w", err)
	}
	return nil
}

func (s *UserStore) UpdateProfile(id int64, name, email string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, email = ?, updated_at = datetime('now') WHERE id = ?`,
		name, email, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return s.GetByID(id)
}
