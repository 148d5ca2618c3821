package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"motorvault-api/internal/domain"
)

// StaffRepository looks up staff accounts for credential checks.
type StaffRepository interface {
	Authenticate(ctx context.Context, email, password string) (*Principal, error)
}

// MySQLStaffRepository implements StaffRepository against the staff_accounts
// table in the main database.
type MySQLStaffRepository struct {
	db *sql.DB
}

// NewMySQLStaffRepository creates a new MySQL staff repository.
func NewMySQLStaffRepository(db *sql.DB) *MySQLStaffRepository {
	return &MySQLStaffRepository{db: db}
}

// Authenticate verifies email+password against the stored bcrypt hash.
// Every failure path returns domain.ErrUnauthorized so callers cannot tell
// an unknown email from a wrong password or a deactivated account.
func (r *MySQLStaffRepository) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	query := `SELECT id, email, password_hash FROM staff_accounts WHERE email = ? AND is_active = 1 LIMIT 1`

	var (
		id, storedEmail, passwordHash string
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&id, &storedEmail, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up staff account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return &Principal{ID: id, Email: storedEmail}, nil
}
