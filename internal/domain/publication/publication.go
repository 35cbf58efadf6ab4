// Package publication holds the Publication and PublicationMedia
// aggregates — the central entity of the dispatcher/driver subsystem.
// Grounded on the teacher's internal/domain/post/post.go: the same
// private-field + getter + state-machine-via-method idiom, generalized
// to the strict SCHEDULED -> PUBLISHING -> {PUBLISHED, ERROR} machine
// spec §4.6 requires (no backoff/retry-from-ERROR — the teacher's
// post.go MarkFailed reschedules with exponential backoff; that
// behavior is deliberately NOT carried here, per spec.md's explicit
// simplification).
package publication

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/socialaccount"
)

type Format string

const (
	FormatFeed     Format = "FEED"
	FormatStory    Format = "STORY"
	FormatReel     Format = "REEL"
	FormatCarousel Format = "CAROUSEL"
	FormatVideo    Format = "VIDEO"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusPublishing Status = "PUBLISHING"
	StatusPublished  Status = "PUBLISHED"
	StatusError      Status = "ERROR"
)

var (
	ErrNotScheduled        = errors.New("publication: not in SCHEDULED state")
	ErrNotPublishing       = errors.New("publication: not in PUBLISHING state")
	ErrImmutableState      = errors.New("publication: cannot be modified while PUBLISHING or PUBLISHED")
	ErrCannotDeletePublishing = errors.New("publication: cannot be deleted while PUBLISHING")
	ErrPlatformMismatch    = errors.New("publication: platform must equal the social account's platform")
)

// PlatformConfig is the opaque JSON map Design Notes §9 describes:
// drivers read specific known keys (privacy_level, disable_*, link) and
// ignore the rest.
type PlatformConfig map[string]interface{}

type Publication struct {
	id              uuid.UUID
	contentID       uuid.UUID
	socialAccountID uuid.UUID
	platform        socialaccount.Platform
	format          Format
	publishAt       time.Time
	status          Status
	errMsg          *string
	customCaption   *string
	platformConfig  PlatformConfig
	platformID      *string
	link            *string
	kanbanColumnID  *uuid.UUID
	kanbanOrder     *int
	createdAt       time.Time
	updatedAt       time.Time
}

func NewPublication(contentID, socialAccountID uuid.UUID, accountPlatform socialaccount.Platform, format Format, publishAt time.Time, customCaption *string, platformConfig PlatformConfig) *Publication {
	now := time.Now().UTC()
	return &Publication{
		id:              uuid.New(),
		contentID:       contentID,
		socialAccountID: socialAccountID,
		platform:        accountPlatform,
		format:          format,
		publishAt:       publishAt,
		status:          StatusScheduled,
		customCaption:   customCaption,
		platformConfig:  platformConfig,
		createdAt:       now,
		updatedAt:       now,
	}
}

func Reconstruct(
	id, contentID, socialAccountID uuid.UUID,
	platform socialaccount.Platform, format Format, publishAt time.Time,
	status Status, errMsg, customCaption *string, platformConfig PlatformConfig,
	platformID, link *string, kanbanColumnID *uuid.UUID, kanbanOrder *int,
	createdAt, updatedAt time.Time,
) *Publication {
	return &Publication{
		id: id, contentID: contentID, socialAccountID: socialAccountID,
		platform: platform, format: format, publishAt: publishAt, status: status,
		errMsg: errMsg, customCaption: customCaption, platformConfig: platformConfig,
		platformID: platformID, link: link, kanbanColumnID: kanbanColumnID,
		kanbanOrder: kanbanOrder, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (p *Publication) ID() uuid.UUID                       { return p.id }
func (p *Publication) ContentID() uuid.UUID                 { return p.contentID }
func (p *Publication) SocialAccountID() uuid.UUID           { return p.socialAccountID }
func (p *Publication) Platform() socialaccount.Platform     { return p.platform }
func (p *Publication) Format() Format                       { return p.format }
func (p *Publication) PublishAt() time.Time                 { return p.publishAt }
func (p *Publication) Status() Status                       { return p.status }
func (p *Publication) ErrorMessage() *string                { return p.errMsg }
func (p *Publication) CustomCaption() *string                { return p.customCaption }
func (p *Publication) PlatformConfig() PlatformConfig        { return p.platformConfig }
func (p *Publication) PlatformID() *string                  { return p.platformID }
func (p *Publication) Link() *string                        { return p.link }
func (p *Publication) KanbanColumnID() *uuid.UUID            { return p.kanbanColumnID }
func (p *Publication) KanbanOrder() *int                     { return p.kanbanOrder }
func (p *Publication) CreatedAt() time.Time                 { return p.createdAt }
func (p *Publication) UpdatedAt() time.Time                 { return p.updatedAt }

// Caption resolves the precedence rule used by every driver (spec §4.4):
// customCaption ?? content.caption ?? "". An empty customCaption counts as
// unset and falls back to the content caption.
func (p *Publication) Caption(contentCaption string) string {
	if p.customCaption != nil && *p.customCaption != "" {
		return *p.customCaption
	}
	return contentCaption
}

// ValidatePlatform enforces spec §3: "platform must equal the referenced
// social account's platform at creation time."
func ValidatePlatform(publicationPlatform, accountPlatform socialaccount.Platform) error {
	if publicationPlatform != accountPlatform {
		return ErrPlatformMismatch
	}
	return nil
}

// MarkPublishing transitions SCHEDULED -> PUBLISHING. This method exists
// for completeness/testing; the actual claim in production runs inside
// the store's ClaimDue transaction (SELECT ... FOR UPDATE SKIP LOCKED,
// then UPDATE; see internal/store/postgres), since the in-process CAS
// here cannot provide the cross-process guarantee spec §4.2 requires.
func (p *Publication) MarkPublishing() error {
	if p.status != StatusScheduled {
		return ErrNotScheduled
	}
	p.status = StatusPublishing
	p.updatedAt = time.Now().UTC()
	return nil
}

func (p *Publication) MarkPublished(platformID, link *string) error {
	if p.status != StatusPublishing {
		return ErrNotPublishing
	}
	p.status = StatusPublished
	p.platformID = platformID
	p.link = link
	p.errMsg = nil
	p.updatedAt = time.Now().UTC()
	return nil
}

func (p *Publication) MarkError(message string) error {
	if p.status != StatusPublishing {
		return ErrNotPublishing
	}
	p.status = StatusError
	p.errMsg = &message
	p.updatedAt = time.Now().UTC()
	return nil
}

// IsImmutable reports the update-rule from spec §4.6: a publication in
// PUBLISHED or PUBLISHING is immutable via the user-facing update endpoint.
func (p *Publication) IsImmutable() bool {
	return p.status == StatusPublished || p.status == StatusPublishing
}

// CanDelete reports the other update rule: a publication in PUBLISHING
// cannot be deleted (PUBLISHED and ERROR/SCHEDULED may be, per spec's
// silence — only PUBLISHING is explicitly forbidden).
func (p *Publication) CanDelete() bool {
	return p.status != StatusPublishing
}

func (p *Publication) UpdateSchedule(publishAt time.Time, customCaption *string, platformConfig PlatformConfig) error {
	if p.IsImmutable() {
		return ErrImmutableState
	}
	p.publishAt = publishAt
	p.customCaption = customCaption
	p.platformConfig = platformConfig
	p.updatedAt = time.Now().UTC()
	return nil
}

type PublicationMedia struct {
	id            uuid.UUID
	publicationID uuid.UUID
	mediaID       uuid.UUID
	order         int
	cropData      map[string]interface{}
}

func NewPublicationMedia(publicationID, mediaID uuid.UUID, order int, cropData map[string]interface{}) *PublicationMedia {
	return &PublicationMedia{id: uuid.New(), publicationID: publicationID, mediaID: mediaID, order: order, cropData: cropData}
}

func ReconstructPublicationMedia(id, publicationID, mediaID uuid.UUID, order int, cropData map[string]interface{}) *PublicationMedia {
	return &PublicationMedia{id: id, publicationID: publicationID, mediaID: mediaID, order: order, cropData: cropData}
}

func (pm *PublicationMedia) ID() uuid.UUID            { return pm.id }
func (pm *PublicationMedia) PublicationID() uuid.UUID { return pm.publicationID }
func (pm *PublicationMedia) MediaID() uuid.UUID       { return pm.mediaID }
func (pm *PublicationMedia) Order() int               { return pm.order }
func (pm *PublicationMedia) CropData() map[string]interface{} { return pm.cropData }
