package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/calendar"
	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/store"
)

type CalendarStore struct {
	db *sql.DB
}

func NewCalendarStore(db *sql.DB) *CalendarStore { return &CalendarStore{db: db} }

func (s *CalendarStore) Create(ctx context.Context, c *calendar.Calendar) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendars (id, user_id, client_id, name, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID(), c.UserID(), c.ClientID(), c.Name(), c.Description(), c.CreatedAt())
	if err != nil {
		return fmt.Errorf("postgres: insert calendar: %w", err)
	}
	return nil
}

func (s *CalendarStore) FindByID(ctx context.Context, clientID, id uuid.UUID) (*calendar.Calendar, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, name, description, created_at
		FROM calendars WHERE id=$1 AND client_id=$2`, id, clientID)
	var (
		cid, userID, cliID uuid.UUID
		name, description  string
		createdAt          time.Time
	)
	if err := row.Scan(&cid, &userID, &cliID, &name, &description, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan calendar: %w", err)
	}
	return calendar.ReconstructCalendar(cid, userID, cliID, name, description, createdAt), nil
}

// Delete cascades to share links and comments per spec §3's lifecycle
// ownership rule. There is no ON DELETE CASCADE in play here: the
// cascade is performed explicitly, inside one transaction, so a
// calendar row never disappears while its share links or comments
// linger as orphans.
func (s *CalendarStore) Delete(ctx context.Context, clientID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin delete calendar tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE calendar_id=$1`, id); err != nil {
		return fmt.Errorf("postgres: cascade delete comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_share_links WHERE calendar_id=$1`, id); err != nil {
		return fmt.Errorf("postgres: cascade delete share links: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM calendars WHERE id=$1 AND client_id=$2`, id, clientID)
	if err != nil {
		return fmt.Errorf("postgres: delete calendar: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete calendar: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *CalendarStore) ReorderColumns(ctx context.Context, calendarID uuid.UUID, ordered []*calendar.KanbanColumn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin reorder tx: %w", err)
	}
	defer tx.Rollback()

	for _, col := range ordered {
		if _, err := tx.ExecContext(ctx, `
			UPDATE kanban_columns SET "order"=$1 WHERE id=$2 AND calendar_id=$3`,
			col.Order(), col.ID(), calendarID,
		); err != nil {
			return fmt.Errorf("postgres: reorder kanban column: %w", err)
		}
	}
	return tx.Commit()
}

// SharedProjection builds the anonymous read-only view (spec §4.8),
// stripping any account tokens by construction: it never selects from
// social_accounts at all.
func (s *CalendarStore) SharedProjection(ctx context.Context, calendarID uuid.UUID) (*store.SharedCalendarView, error) {
	cal, err := s.findAny(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	contentRows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, client_id, calendar_id, caption, created_at
		FROM contents WHERE calendar_id=$1 ORDER BY created_at ASC`, calendarID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list shared contents: %w", err)
	}
	defer contentRows.Close()

	var views []store.SharedContentView
	for contentRows.Next() {
		var (
			id, userID, clientID uuid.UUID
			calID                uuid.NullUUID
			caption              string
			createdAt            time.Time
		)
		if err := contentRows.Scan(&id, &userID, &clientID, &calID, &caption, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scan shared content: %w", err)
		}
		var cID *uuid.UUID
		if calID.Valid {
			cID = &calID.UUID
		}
		c := content.ReconstructContent(id, userID, clientID, cID, caption, createdAt)

		media, err := s.loadContentMedia(ctx, id)
		if err != nil {
			return nil, err
		}
		pubs, err := s.loadContentPublications(ctx, id)
		if err != nil {
			return nil, err
		}
		views = append(views, store.SharedContentView{Content: c, Media: media, Publications: pubs})
	}

	return &store.SharedCalendarView{Calendar: cal, Contents: views}, contentRows.Err()
}

func (s *CalendarStore) findAny(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, name, description, created_at FROM calendars WHERE id=$1`, id)
	var (
		cid, userID, cliID uuid.UUID
		name, description  string
		createdAt          time.Time
	)
	if err := row.Scan(&cid, &userID, &cliID, &name, &description, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan calendar: %w", err)
	}
	return calendar.ReconstructCalendar(cid, userID, cliID, name, description, createdAt), nil
}

func (s *CalendarStore) loadContentMedia(ctx context.Context, contentID uuid.UUID) ([]*content.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_id, url, key, type, mime_type, size, width, height, duration, thumbnail, "order", created_at
		FROM media WHERE content_id=$1 ORDER BY "order" ASC`, contentID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list content media: %w", err)
	}
	defer rows.Close()

	var out []*content.Media
	for rows.Next() {
		var (
			id, cID             uuid.UUID
			url, key, mType, mt string
			size                int64
			width, height       sql.NullInt64
			duration            sql.NullFloat64
			thumbnail           sql.NullString
			order               int
			createdAt           time.Time
		)
		if err := rows.Scan(&id, &cID, &url, &key, &mType, &mt, &size, &width, &height, &duration, &thumbnail, &order, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scan content media: %w", err)
		}
		var w, h *int
		if width.Valid {
			v := int(width.Int64)
			w = &v
		}
		if height.Valid {
			v := int(height.Int64)
			h = &v
		}
		var dur *float64
		if duration.Valid {
			dur = &duration.Float64
		}
		var thumb *string
		if thumbnail.Valid {
			thumb = &thumbnail.String
		}
		out = append(out, content.ReconstructMedia(id, cID, url, key, content.MediaType(mType), mt, size, w, h, dur, thumb, order, createdAt))
	}
	return out, rows.Err()
}

func (s *CalendarStore) loadContentPublications(ctx context.Context, contentID uuid.UUID) ([]*publication.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_id, social_account_id, platform, format, publish_at, status,
		       error, custom_caption, platform_config, platform_id, link,
		       kanban_column_id, kanban_order, created_at, updated_at
		FROM publications WHERE content_id=$1 ORDER BY publish_at ASC`, contentID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list content publications: %w", err)
	}
	defer rows.Close()

	var out []*publication.Publication
	for rows.Next() {
		p, err := scanPublicationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
