// Package platform declares the Publisher contract (spec §4.3) and the
// Registry that maps a platform tag to its driver. Grounded on the
// teacher's internal/social.SocialAdapter interface, narrowed to the
// three operations this spec actually needs: validate, publish, and an
// optional cancel.
package platform

import (
	"context"

	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/store"
)

// PublishOutcome is the success side of Publish. Either PlatformID or
// Link may be empty depending on the platform/format.
type PublishOutcome struct {
	PlatformID string
	Link       string
}

// Publisher is implemented once per social platform. publish's input
// carries every relation pre-loaded (spec §4.3): the driver must not
// re-fetch from the store.
type Publisher interface {
	// Validate checks format-specific constraints without network I/O.
	Validate(format publication.Format, pub *store.PublicationForPublish) error

	// Publish performs the network-side posting work and returns the
	// platform id/link on success, or an error on failure.
	Publish(ctx context.Context, pub *store.PublicationForPublish) (*PublishOutcome, error)

	// Cancel is a best-effort revocation for platforms that support it.
	// Drivers that don't support cancellation return ErrCancelUnsupported.
	Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error

	Platform() socialaccount.Platform
}

// Registry maps a platform tag to its driver. Lookup reports false for a
// tag with no registered driver and returns no error of its own; the
// dispatcher then records the publication as ERROR. No bad_request error
// is produced for an unknown tag.
type Registry struct {
	drivers map[socialaccount.Platform]Publisher
}

func NewRegistry() *Registry {
	return &Registry{drivers: make(map[socialaccount.Platform]Publisher)}
}

func (r *Registry) Register(p Publisher) {
	r.drivers[p.Platform()] = p
}

func (r *Registry) Lookup(p socialaccount.Platform) (Publisher, bool) {
	d, ok := r.drivers[p]
	return d, ok
}
