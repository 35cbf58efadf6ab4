// Package publicshare implements the Public Share Service (spec §4.8):
// the anonymous read path for a shared calendar and the bounded-edit
// comment write path. All operations are keyed by the raw share-link
// token; none accept an identified user.
package publicshare

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/comment"
	sharelinkdomain "github.com/techappsUT/planer/internal/domain/sharelink"
	linksvc "github.com/techappsUT/planer/internal/sharelink"
	"github.com/techappsUT/planer/internal/store"
)

const defaultPageSize = 20

type Service struct {
	links    *linksvc.Service
	calendars store.CalendarStore
	comments store.CommentStore
}

func NewService(links *linksvc.Service, calendars store.CalendarStore, comments store.CommentStore) *Service {
	return &Service{links: links, calendars: calendars, comments: comments}
}

// SharedCalendar is the anonymous projection spec §4.8 describes, with
// the link's permission attached so the gateway can gate write access.
type SharedCalendar struct {
	View       *store.SharedCalendarView
	Permission sharelinkdomain.Permission
}

func (s *Service) GetSharedCalendar(ctx context.Context, rawToken string) (*SharedCalendar, error) {
	link, status, err := s.links.Resolve(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if status != sharelinkdomain.ResolveValid {
		return nil, resolveStatusError(status)
	}

	view, err := s.calendars.SharedProjection(ctx, link.CalendarID())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &SharedCalendar{View: view, Permission: link.Permission()}, nil
}

// CommentPage is the cursor-paginated comment feed spec §4.8 describes.
type CommentPage struct {
	Comments   []*comment.Comment
	NextCursor *time.Time
	HasMore    bool
}

func (s *Service) GetComments(ctx context.Context, rawToken string, cursor *time.Time, limit int, publicationID *uuid.UUID) (*CommentPage, error) {
	link, status, err := s.resolveForRead(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	// Fetch limit+1 to detect hasMore without a second round-trip
	// (spec §4.8).
	rows, err := s.comments.ListPage(ctx, link.CalendarID(), publicationID, cursor, limit+1)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	var next *time.Time
	if len(rows) > 0 {
		ts := rows[len(rows)-1].CreatedAt()
		next = &ts
	}
	return &CommentPage{Comments: rows, NextCursor: next, HasMore: hasMore}, nil
}

func (s *Service) CreateComment(ctx context.Context, rawToken, commenterID, authorName string, authorEmail *string, body string, publicationID *uuid.UUID) (*comment.Comment, error) {
	link, err := s.requireWritePermission(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if publicationID != nil {
		belongs, err := s.publicationBelongsToCalendar(ctx, link.CalendarID(), *publicationID)
		if err != nil {
			return nil, err
		}
		if !belongs {
			return nil, apperr.BadRequest("publication does not belong to this shared calendar")
		}
	}

	c := comment.NewPublicComment(link.CalendarID(), publicationID, link.ID(), commenterID, authorName, authorEmail, body)
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *Service) UpdateComment(ctx context.Context, rawToken string, commentID uuid.UUID, commenterID, body string) (*comment.Comment, error) {
	link, err := s.resolveForReadOnlyLink(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, link.CalendarID(), commentID)
	if err != nil {
		return nil, apperr.NotFound("comment not found")
	}
	if err := c.AuthorizeCommenterEdit(commenterID, time.Now().UTC()); err != nil {
		return nil, authorizeErr(err)
	}
	c.UpdateBody(body)
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, rawToken string, commentID uuid.UUID, commenterID string) error {
	link, err := s.resolveForReadOnlyLink(ctx, rawToken)
	if err != nil {
		return err
	}
	c, err := s.comments.FindByID(ctx, link.CalendarID(), commentID)
	if err != nil {
		return apperr.NotFound("comment not found")
	}
	if err := c.AuthorizeCommenterEdit(commenterID, time.Now().UTC()); err != nil {
		return authorizeErr(err)
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *Service) requireWritePermission(ctx context.Context, rawToken string) (*sharelinkdomain.ShareLink, error) {
	link, status, err := s.links.Resolve(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if status != sharelinkdomain.ResolveValid {
		return nil, resolveStatusError(status)
	}
	if link.Permission() != sharelinkdomain.PermissionViewAndComment {
		return nil, apperr.Forbidden("this share link does not allow commenting")
	}
	return link, nil
}

func (s *Service) resolveForRead(ctx context.Context, rawToken string) (*sharelinkdomain.ShareLink, error) {
	link, status, err := s.links.Resolve(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if status != sharelinkdomain.ResolveValid {
		return nil, resolveStatusError(status)
	}
	return link, nil
}

// resolveForReadOnlyLink backs edit/delete: any valid link (VIEW or
// VIEW_AND_COMMENT) may attempt edit/delete, since the real gate is
// commenter-identity ownership, not the link's permission (spec §4.8).
func (s *Service) resolveForReadOnlyLink(ctx context.Context, rawToken string) (*sharelinkdomain.ShareLink, error) {
	return s.resolveForRead(ctx, rawToken)
}

func (s *Service) publicationBelongsToCalendar(ctx context.Context, calendarID, publicationID uuid.UUID) (bool, error) {
	view, err := s.calendars.SharedProjection(ctx, calendarID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	for _, c := range view.Contents {
		for _, p := range c.Publications {
			if p.ID() == publicationID {
				return true, nil
			}
		}
	}
	return false, nil
}

func resolveStatusError(status sharelinkdomain.ResolveStatus) error {
	switch status {
	case sharelinkdomain.ResolveRevoked:
		return apperr.Gone("share link has been revoked")
	case sharelinkdomain.ResolveExpired:
		return apperr.Gone("share link has expired")
	default:
		return apperr.NotFound("share link not found")
	}
}

func authorizeErr(err error) error {
	switch err {
	case comment.ErrNotCommentOwner:
		return apperr.Forbidden("caller is not the comment's author")
	case comment.ErrEditWindowClosed:
		return apperr.Forbidden("edit window has closed")
	default:
		return apperr.Internal(err)
	}
}
