// Package facebook is an unsupported/not-yet-implemented driver (spec
// §4.5): validate applies sensible format rules, publish returns a
// well-formed not-implemented error.
package facebook

import (
	"context"
	"fmt"

	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

type Driver struct{}

func New() *Driver { return &Driver{} }

func (d *Driver) Platform() socialaccount.Platform { return socialaccount.PlatformFacebook }

func (d *Driver) Validate(format publication.Format, pub *store.PublicationForPublish) error {
	caption := pub.Publication.Caption(pub.ContentCaption)
	if len(caption) > 63206 {
		return fmt.Errorf("facebook: caption exceeds maximum length")
	}
	return nil
}

func (d *Driver) Publish(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
	return nil, platform.ErrNotImplemented
}

func (d *Driver) Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error {
	return platform.ErrCancelUnsupported
}
