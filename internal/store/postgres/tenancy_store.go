package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/identity"
)

var ErrNotFound = errors.New("postgres: row not found")

type TenancyStore struct {
	db *sql.DB
}

func NewTenancyStore(db *sql.DB) *TenancyStore { return &TenancyStore{db: db} }

func (s *TenancyStore) FindUserByExternalSubject(ctx context.Context, subject string) (*identity.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, external_subject, email, name, avatar, created_at, updated_at
		FROM users WHERE external_subject = $1`, subject)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*identity.User, error) {
	var (
		id                    uuid.UUID
		externalSubject, name string
		email                 string
		avatar                sql.NullString
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &externalSubject, &email, &name, &avatar, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	return identity.ReconstructUser(id, externalSubject, email, name, avatar.String, createdAt, updatedAt), nil
}

// ProvisionUser creates a User and its default Client inside a single
// transaction, per spec §3/§4.1 step 2.
func (s *TenancyStore) ProvisionUser(ctx context.Context, externalSubject, email, name string) (*identity.User, *identity.Client, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: begin provision tx: %w", err)
	}
	defer tx.Rollback()

	u := identity.NewUser(externalSubject, email, name)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, external_subject, email, name, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $5)`,
		u.ID(), u.ExternalSubject(), u.Email(), u.Name(), u.CreatedAt(),
	); err != nil {
		return nil, nil, fmt.Errorf("postgres: insert user: %w", err)
	}

	c := identity.NewClient(u.ID(), name)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clients (id, user_id, name, avatar, created_at)
		VALUES ($1, $2, $3, '', $4)`,
		c.ID(), c.UserID(), c.Name(), c.CreatedAt(),
	); err != nil {
		return nil, nil, fmt.Errorf("postgres: insert default client: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("postgres: commit provision tx: %w", err)
	}
	return u, c, nil
}

func (s *TenancyStore) FindClientByID(ctx context.Context, id uuid.UUID) (*identity.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, avatar, created_at FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

func (s *TenancyStore) EarliestClientForUser(ctx context.Context, userID uuid.UUID) (*identity.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, avatar, created_at FROM clients
		WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`, userID)
	return scanClient(row)
}

func scanClient(row *sql.Row) (*identity.Client, error) {
	var (
		id, userID uuid.UUID
		name       string
		avatar     sql.NullString
		createdAt  time.Time
	)
	if err := row.Scan(&id, &userID, &name, &avatar, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan client: %w", err)
	}
	return identity.ReconstructClient(id, userID, name, avatar.String, createdAt), nil
}
