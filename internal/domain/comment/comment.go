// Package comment holds the Comment aggregate from spec §3/§4.8: manager-
// or public-commenter-authored comments on a calendar, with a bounded
// edit window for anonymous commenters.
package comment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotCommentOwner = errors.New("comment: caller is not the comment's commenter")
	ErrEditWindowClosed = errors.New("comment: edit window has closed")
)

// EditWindow is the bounded-lifetime window for public-commenter edits
// (spec §3/§8 invariant 6): "now - createdAt <= 15 minutes".
const EditWindow = 15 * time.Minute

type Comment struct {
	id            uuid.UUID
	calendarID    uuid.UUID
	publicationID *uuid.UUID
	shareLinkID   *uuid.UUID
	userID        *uuid.UUID
	commenterID   *string
	authorName    string
	authorEmail   *string
	body          string
	isResolved    bool
	createdAt     time.Time
	updatedAt     time.Time
}

func NewManagerComment(calendarID uuid.UUID, publicationID *uuid.UUID, userID uuid.UUID, authorName, body string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		id: uuid.New(), calendarID: calendarID, publicationID: publicationID,
		userID: &userID, authorName: authorName, body: body,
		createdAt: now, updatedAt: now,
	}
}

func NewPublicComment(calendarID uuid.UUID, publicationID *uuid.UUID, shareLinkID uuid.UUID, commenterID, authorName string, authorEmail *string, body string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		id: uuid.New(), calendarID: calendarID, publicationID: publicationID,
		shareLinkID: &shareLinkID, commenterID: &commenterID,
		authorName: authorName, authorEmail: authorEmail, body: body,
		createdAt: now, updatedAt: now,
	}
}

func Reconstruct(
	id, calendarID uuid.UUID, publicationID, shareLinkID *uuid.UUID,
	userID *uuid.UUID, commenterID *string, authorName string, authorEmail *string,
	body string, isResolved bool, createdAt, updatedAt time.Time,
) *Comment {
	return &Comment{
		id: id, calendarID: calendarID, publicationID: publicationID, shareLinkID: shareLinkID,
		userID: userID, commenterID: commenterID, authorName: authorName, authorEmail: authorEmail,
		body: body, isResolved: isResolved, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (c *Comment) ID() uuid.UUID              { return c.id }
func (c *Comment) CalendarID() uuid.UUID      { return c.calendarID }
func (c *Comment) PublicationID() *uuid.UUID  { return c.publicationID }
func (c *Comment) ShareLinkID() *uuid.UUID    { return c.shareLinkID }
func (c *Comment) UserID() *uuid.UUID         { return c.userID }
func (c *Comment) CommenterID() *string       { return c.commenterID }
func (c *Comment) AuthorName() string         { return c.authorName }
func (c *Comment) AuthorEmail() *string       { return c.authorEmail }
func (c *Comment) Body() string               { return c.body }
func (c *Comment) IsResolved() bool           { return c.isResolved }
func (c *Comment) CreatedAt() time.Time       { return c.createdAt }
func (c *Comment) UpdatedAt() time.Time       { return c.updatedAt }

// IsManager reports whether the comment was authored by a logged-in
// manager, per spec §4.8: "Each item carries isManager iff its userId is set."
func (c *Comment) IsManager() bool { return c.userID != nil }

// AuthorizeCommenterEdit enforces spec §8 invariant 6 in full: the caller
// must be the original commenter AND within the 15-minute window.
func (c *Comment) AuthorizeCommenterEdit(callerCommenterID string, now time.Time) error {
	if c.commenterID == nil || *c.commenterID != callerCommenterID {
		return ErrNotCommentOwner
	}
	if now.Sub(c.createdAt) > EditWindow {
		return ErrEditWindowClosed
	}
	return nil
}

func (c *Comment) UpdateBody(body string) {
	c.body = body
	c.updatedAt = time.Now().UTC()
}

func (c *Comment) Resolve()   { c.isResolved = true; c.updatedAt = time.Now().UTC() }
func (c *Comment) Unresolve() { c.isResolved = false; c.updatedAt = time.Now().UTC() }
