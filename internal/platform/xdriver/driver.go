// Package xdriver is an unsupported/not-yet-implemented driver for X
// (spec §4.5): validate enforces text<=280 / media<=4, publish returns a
// well-formed not-implemented error. Named xdriver rather than x to
// avoid colliding with the standard library's golang.org/x path prefix
// convention in import lines.
package xdriver

import (
	"context"
	"fmt"

	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

const (
	maxTextLength  = 280
	maxMediaItems  = 4
)

type Driver struct{}

func New() *Driver { return &Driver{} }

func (d *Driver) Platform() socialaccount.Platform { return socialaccount.PlatformX }

func (d *Driver) Validate(format publication.Format, pub *store.PublicationForPublish) error {
	caption := pub.Publication.Caption(pub.ContentCaption)
	if len(caption) > maxTextLength {
		return fmt.Errorf("x: text exceeds %d characters", maxTextLength)
	}
	if len(pub.Media) > maxMediaItems {
		return fmt.Errorf("x: at most %d media items are allowed", maxMediaItems)
	}
	return nil
}

func (d *Driver) Publish(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
	return nil, platform.ErrNotImplemented
}

func (d *Driver) Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error {
	return platform.ErrCancelUnsupported
}
