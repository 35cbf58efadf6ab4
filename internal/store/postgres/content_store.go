package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/content"
)

type ContentStore struct {
	db *sql.DB
}

func NewContentStore(db *sql.DB) *ContentStore { return &ContentStore{db: db} }

func (s *ContentStore) Create(ctx context.Context, c *content.Content) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contents (id, user_id, client_id, calendar_id, caption, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID(), c.UserID(), c.ClientID(), c.CalendarID(), c.Caption(), c.CreatedAt())
	if err != nil {
		return fmt.Errorf("postgres: insert content: %w", err)
	}
	return nil
}

func (s *ContentStore) FindByID(ctx context.Context, clientID, id uuid.UUID) (*content.Content, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, calendar_id, caption, created_at
		FROM contents WHERE id=$1 AND client_id=$2`, id, clientID)

	var (
		cid, userID, cliID uuid.UUID
		calendarID         uuid.NullUUID
		caption            string
		createdAt          time.Time
	)
	if err := row.Scan(&cid, &userID, &cliID, &calendarID, &caption, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan content: %w", err)
	}
	var calID *uuid.UUID
	if calendarID.Valid {
		calID = &calendarID.UUID
	}
	return content.ReconstructContent(cid, userID, cliID, calID, caption, createdAt), nil
}

func (s *ContentStore) Delete(ctx context.Context, clientID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contents WHERE id=$1 AND client_id=$2`, id, clientID)
	if err != nil {
		return fmt.Errorf("postgres: delete content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasNonErrorPublications backs spec §4.9's content-delete guard: a
// content cannot be deleted while it still has publications in any
// status other than ERROR.
func (s *ContentStore) HasNonErrorPublications(ctx context.Context, contentID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM publications WHERE content_id=$1 AND status <> 'ERROR')`, contentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check non-error publications: %w", err)
	}
	return exists, nil
}

func (s *ContentStore) AddMedia(ctx context.Context, m *content.Media) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, content_id, url, key, type, mime_type, size, width, height, duration, thumbnail, "order", created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		m.ID(), m.ContentID(), m.URL(), m.Key(), string(m.Type()), m.MimeType(), m.Size(),
		m.Width(), m.Height(), m.Duration(), m.Thumbnail(), m.Order(), m.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert media: %w", err)
	}
	return nil
}

func (s *ContentStore) DeleteMedia(ctx context.Context, contentID, mediaID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id=$1 AND content_id=$2`, mediaID, contentID)
	if err != nil {
		return fmt.Errorf("postgres: delete media: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MediaReferencedByPublication backs spec §4.9: media referenced by a
// publication's ordered media list cannot be deleted outright.
func (s *ContentStore) MediaReferencedByPublication(ctx context.Context, mediaID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM publication_media WHERE media_id=$1)`, mediaID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check media references: %w", err)
	}
	return exists, nil
}

func (s *ContentStore) CountMedia(ctx context.Context, contentID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE content_id=$1`, contentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count media: %w", err)
	}
	return n, nil
}
