package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/comment"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore { return &CommentStore{db: db} }

func (s *CommentStore) Create(ctx context.Context, c *comment.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (
			id, calendar_id, publication_id, share_link_id, user_id, commenter_id,
			author_name, author_email, body, is_resolved, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID(), c.CalendarID(), c.PublicationID(), c.ShareLinkID(), c.UserID(), c.CommenterID(),
		c.AuthorName(), c.AuthorEmail(), c.Body(), c.IsResolved(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert comment: %w", err)
	}
	return nil
}

func (s *CommentStore) FindByID(ctx context.Context, calendarID, id uuid.UUID) (*comment.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, publication_id, share_link_id, user_id, commenter_id,
		       author_name, author_email, body, is_resolved, created_at, updated_at
		FROM comments WHERE id=$1 AND calendar_id=$2`, id, calendarID)
	return scanComment(row)
}

func (s *CommentStore) Update(ctx context.Context, c *comment.Comment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET body=$1, is_resolved=$2, updated_at=$3 WHERE id=$4`,
		c.Body(), c.IsResolved(), c.UpdatedAt(), c.ID())
	if err != nil {
		return fmt.Errorf("postgres: update comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPage fetches limit+1 rows to let the caller detect hasMore, per
// spec §4.8.
func (s *CommentStore) ListPage(ctx context.Context, calendarID uuid.UUID, publicationID *uuid.UUID, cursor *time.Time, limit int) ([]*comment.Comment, error) {
	where := `calendar_id=$1 AND is_resolved=false`
	args := []interface{}{calendarID}
	n := 1
	if publicationID != nil {
		n++
		where += fmt.Sprintf(" AND publication_id=$%d", n)
		args = append(args, *publicationID)
	}
	if cursor != nil {
		n++
		where += fmt.Sprintf(" AND created_at < $%d", n)
		args = append(args, *cursor)
	}
	n++
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, calendar_id, publication_id, share_link_id, user_id, commenter_id,
		       author_name, author_email, body, is_resolved, created_at, updated_at
		FROM comments WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d`, where, n), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list comments: %w", err)
	}
	defer rows.Close()

	var out []*comment.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row scannable) (*comment.Comment, error) {
	var (
		id, calendarID                 uuid.UUID
		publicationID, shareLinkID     uuid.NullUUID
		userID                         uuid.NullUUID
		commenterID, authorEmail       sql.NullString
		authorName, body               string
		isResolved                     bool
		createdAt, updatedAt           time.Time
	)
	if err := row.Scan(&id, &calendarID, &publicationID, &shareLinkID, &userID, &commenterID,
		&authorName, &authorEmail, &body, &isResolved, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan comment: %w", err)
	}

	var pubID, linkID, uID *uuid.UUID
	if publicationID.Valid {
		pubID = &publicationID.UUID
	}
	if shareLinkID.Valid {
		linkID = &shareLinkID.UUID
	}
	if userID.Valid {
		uID = &userID.UUID
	}
	var cID, email *string
	if commenterID.Valid {
		cID = &commenterID.String
	}
	if authorEmail.Valid {
		email = &authorEmail.String
	}

	return comment.Reconstruct(id, calendarID, pubID, linkID, uID, cID, authorName, email, body, isResolved, createdAt, updatedAt), nil
}
