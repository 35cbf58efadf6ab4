// Package store declares the narrow, read-pattern-specific interfaces the
// core depends on (Design Notes §9: "a data-access layer that exposes
// narrow query functions per read pattern; avoid returning untyped
// partial objects across layers"). Concrete implementations live in
// internal/store/postgres. The Store itself is an out-of-scope external
// collaborator per spec §1; these interfaces are the contract side of
// that boundary.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/calendar"
	"github.com/techappsUT/planer/internal/domain/comment"
	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/identity"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/sharelink"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
)

// TenancyStore backs the Tenancy Resolver (spec §4.1).
type TenancyStore interface {
	FindUserByExternalSubject(ctx context.Context, subject string) (*identity.User, error)
	// ProvisionUser creates a User and a default Client for it in the same
	// transaction (spec §3: "On user creation, a default Client owned by
	// the user is created in the same transaction.")
	ProvisionUser(ctx context.Context, externalSubject, email, name string) (*identity.User, *identity.Client, error)
	FindClientByID(ctx context.Context, id uuid.UUID) (*identity.Client, error)
	// EarliestClientForUser returns the user's earliest-created client,
	// for the auto-pick-first-client fallback (spec §4.1 step 5).
	EarliestClientForUser(ctx context.Context, userID uuid.UUID) (*identity.Client, error)
}

// PublicationForPublish is the "PUBLICATION_FULL_INCLUDE" projection
// (Design Notes §9): returned only to the dispatcher, with relations
// pre-loaded so the driver never re-fetches from the store.
type PublicationForPublish struct {
	Publication    *publication.Publication
	ContentCaption string
	Media          []OrderedMedia // media referenced by this publication, in publication order
	Account        *socialaccount.Account
}

type OrderedMedia struct {
	Media *content.Media
	Order int
	Crop  map[string]interface{}
}

// PublicationStore backs Publication CRUD, the dispatcher's claim
// primitive, and terminal-state recording (spec §4.2, §4.6).
type PublicationStore interface {
	Create(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error
	FindByID(ctx context.Context, clientID, id uuid.UUID) (*publication.Publication, error)
	Update(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error
	Delete(ctx context.Context, clientID, id uuid.UUID) error
	List(ctx context.Context, clientID uuid.UUID, filter ListFilter) ([]*publication.Publication, int, error)

	// ClaimDue atomically transitions up to batchSize publications from
	// SCHEDULED to PUBLISHING where publishAt <= now, ordered by publishAt
	// ascending, and returns their full dispatcher projection. This is the
	// conditional-claim primitive spec §4.2/§4.6 requires.
	ClaimDue(ctx context.Context, now time.Time, batchSize int) ([]*PublicationForPublish, error)
	MarkPublished(ctx context.Context, id uuid.UUID, platformID, link *string) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
}

type ListFilter struct {
	Platform   *string
	Status     *string
	ContentID  *uuid.UUID
	CalendarID *uuid.UUID
	Page       int
	Limit      int
}

// ShareLinkStore backs the Share-Link Service (spec §4.7).
type ShareLinkStore interface {
	Create(ctx context.Context, link *sharelink.ShareLink) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*sharelink.ShareLink, error)
	FindByID(ctx context.Context, calendarID, id uuid.UUID) (*sharelink.ShareLink, error)
	UpdateAccessStats(ctx context.Context, id uuid.UUID, lastAccessedAt time.Time, accessCount int) error
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
	// Regenerate revokes `oldID` and creates `newLink` atomically (spec §4.7).
	Regenerate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, newLink *sharelink.ShareLink) error
	// SweepExpired bulk-deactivates all active, expired links; returns rows affected.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// CommentStore backs the Public Share Service's comment operations
// (spec §4.8).
type CommentStore interface {
	Create(ctx context.Context, c *comment.Comment) error
	FindByID(ctx context.Context, calendarID, id uuid.UUID) (*comment.Comment, error)
	Update(ctx context.Context, c *comment.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListPage returns up to limit+1 non-resolved comments ordered by
	// createdAt desc, optionally filtered by publicationID and before a
	// cursor timestamp (spec §4.8).
	ListPage(ctx context.Context, calendarID uuid.UUID, publicationID *uuid.UUID, cursor *time.Time, limit int) ([]*comment.Comment, error)
}

// CalendarStore backs the thin calendar/kanban CRUD surfaces and the
// public projection the Public Share Service exposes.
type CalendarStore interface {
	Create(ctx context.Context, c *calendar.Calendar) error
	FindByID(ctx context.Context, clientID, id uuid.UUID) (*calendar.Calendar, error)
	Delete(ctx context.Context, clientID, id uuid.UUID) error

	ReorderColumns(ctx context.Context, calendarID uuid.UUID, ordered []*calendar.KanbanColumn) error

	// SharedProjection returns the read-only public view spec §4.8
	// describes: ordered contents, their ordered media, and each
	// content's publications ordered by publishAt, stripped of any
	// account tokens.
	SharedProjection(ctx context.Context, calendarID uuid.UUID) (*SharedCalendarView, error)
}

type SharedCalendarView struct {
	Calendar *calendar.Calendar
	Contents []SharedContentView
}

type SharedContentView struct {
	Content      *content.Content
	Media        []*content.Media
	Publications []*publication.Publication
}

// ContentStore backs content/media CRUD (thin, boilerplate per spec §1
// Non-goals, still enforcing the ownership invariant).
type ContentStore interface {
	Create(ctx context.Context, c *content.Content) error
	FindByID(ctx context.Context, clientID, id uuid.UUID) (*content.Content, error)
	Delete(ctx context.Context, clientID, id uuid.UUID) error
	HasNonErrorPublications(ctx context.Context, contentID uuid.UUID) (bool, error)

	AddMedia(ctx context.Context, m *content.Media) error
	DeleteMedia(ctx context.Context, contentID, mediaID uuid.UUID) error
	MediaReferencedByPublication(ctx context.Context, mediaID uuid.UUID) (bool, error)
	CountMedia(ctx context.Context, contentID uuid.UUID) (int, error)
}

// SocialAccountStore backs SocialAccount persistence, including the
// TikTok refresh-and-retry token update (spec §4.5).
type SocialAccountStore interface {
	FindByID(ctx context.Context, clientID, id uuid.UUID) (*socialaccount.Account, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
}
