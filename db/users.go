package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateUser inserts a new account. Email comparison is case-insensitive:
// the address is lowercased before storage.
func CreateUser(name, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           NewID(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    NowMs(),
	}
	_, err := GetDB().Exec(`
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the account for an email address, or nil when none exists
func GetUserByEmail(email string) (*User, error) {
	return scanUser(GetDB().QueryRow(`
		SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

// GetUserByID returns the account for an id, or nil when none exists
func GetUserByID(id string) (*User, error) {
	return scanUser(GetDB().QueryRow(`
		SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?
	`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
