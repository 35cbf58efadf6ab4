// Package instagram implements the Instagram Graph API driver (spec
// §4.4): a two-phase container flow (create container, wait, publish)
// dispatched on publication format. HTTP call shape — form-encoded
// POST, status-code + body-read error handling — is grounded on the
// teacher's internal/adapters/social/twitter/client.go.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

type Config struct {
	APIURL        string
	MediaWaitTime time.Duration
	VideoWaitTime time.Duration

	// CallTimeout bounds every outbound Graph API call (spec §5,
	// default 30s). Zero falls back to the default.
	CallTimeout time.Duration
}

type Driver struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

const defaultCallTimeout = 30 * time.Second

func New(cfg Config, log *zap.Logger) *Driver {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Driver{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (d *Driver) Platform() socialaccount.Platform { return socialaccount.PlatformInstagram }

func (d *Driver) Validate(format publication.Format, pub *store.PublicationForPublish) error {
	switch format {
	case publication.FormatFeed, publication.FormatStory, publication.FormatReel:
		if len(pub.Media) != 1 {
			return fmt.Errorf("instagram: %s requires exactly one media item", format)
		}
	case publication.FormatCarousel:
		if len(pub.Media) < 2 {
			return fmt.Errorf("instagram: carousel requires at least two media items")
		}
	default:
		return fmt.Errorf("instagram: unsupported format %s", format)
	}
	return nil
}

func (d *Driver) Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error {
	return platform.ErrCancelUnsupported
}

func (d *Driver) Publish(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
	caption := pub.Publication.Caption(pub.ContentCaption)
	account := pub.Account

	switch pub.Publication.Format() {
	case publication.FormatFeed:
		return d.publishFeed(ctx, account, pub, caption)
	case publication.FormatStory:
		return d.publishStory(ctx, account, pub, caption)
	case publication.FormatReel:
		return d.publishReel(ctx, account, pub, caption)
	case publication.FormatCarousel:
		return d.publishCarousel(ctx, account, pub, caption)
	default:
		return nil, fmt.Errorf("instagram: unsupported format %s", pub.Publication.Format())
	}
}

func (d *Driver) publishFeed(ctx context.Context, account *socialaccount.Account, pub *store.PublicationForPublish, caption string) (*platform.PublishOutcome, error) {
	media := pub.Media[0].Media

	containerID, err := d.createContainer(ctx, account, url.Values{
		"image_url": {media.URL()},
		"caption":   {caption},
	})
	if err != nil {
		return nil, err
	}

	d.wait(d.cfg.MediaWaitTime)

	publishedID, err := d.publishContainer(ctx, account, containerID)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("https://www.instagram.com/p/%s", publishedID)
	return &platform.PublishOutcome{PlatformID: publishedID, Link: link}, nil
}

func (d *Driver) publishStory(ctx context.Context, account *socialaccount.Account, pub *store.PublicationForPublish, caption string) (*platform.PublishOutcome, error) {
	media := pub.Media[0].Media

	form := url.Values{
		"image_url":  {media.URL()},
		"media_type": {"STORIES"},
	}
	if link, ok := pub.Publication.PlatformConfig()["link"].(string); ok && link != "" {
		form.Set("link", link)
	}

	containerID, err := d.createContainer(ctx, account, form)
	if err != nil {
		return nil, err
	}

	d.wait(d.cfg.MediaWaitTime)

	publishedID, err := d.publishContainer(ctx, account, containerID)
	if err != nil {
		return nil, err
	}
	// Stories have no permanent URL.
	return &platform.PublishOutcome{PlatformID: publishedID}, nil
}

func (d *Driver) publishReel(ctx context.Context, account *socialaccount.Account, pub *store.PublicationForPublish, caption string) (*platform.PublishOutcome, error) {
	media := pub.Media[0].Media

	form := url.Values{
		"video_url":  {media.URL()},
		"media_type": {"REELS"},
		"caption":    {caption},
	}
	if media.Thumbnail() != nil && *media.Thumbnail() != "" {
		form.Set("cover_url", *media.Thumbnail())
	}

	containerID, err := d.createContainer(ctx, account, form)
	if err != nil {
		return nil, err
	}

	d.wait(d.cfg.VideoWaitTime)

	publishedID, err := d.publishContainer(ctx, account, containerID)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("https://www.instagram.com/reel/%s", publishedID)
	return &platform.PublishOutcome{PlatformID: publishedID, Link: link}, nil
}

func (d *Driver) publishCarousel(ctx context.Context, account *socialaccount.Account, pub *store.PublicationForPublish, caption string) (*platform.PublishOutcome, error) {
	var childIDs []string
	hasVideo := false

	for _, om := range pub.Media {
		m := om.Media
		form := url.Values{"is_carousel_item": {"true"}}
		if m.Type() == content.MediaVideo {
			hasVideo = true
			form.Set("media_type", "VIDEO")
			form.Set("video_url", m.URL())
		} else {
			form.Set("image_url", m.URL())
		}
		childID, err := d.createContainer(ctx, account, form)
		if err != nil {
			return nil, err
		}
		childIDs = append(childIDs, childID)
	}

	if hasVideo {
		d.wait(d.cfg.VideoWaitTime)
	} else {
		d.wait(d.cfg.MediaWaitTime)
	}

	parentForm := url.Values{
		"media_type":       {"CAROUSEL"},
		"caption":          {caption},
		"children":         {strings.Join(childIDs, ",")},
		"is_carousel_item": {"false"},
	}
	parentID, err := d.createContainer(ctx, account, parentForm)
	if err != nil {
		return nil, err
	}

	d.wait(d.cfg.MediaWaitTime)

	publishedID, err := d.publishContainer(ctx, account, parentID)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("https://www.instagram.com/p/%s", publishedID)
	return &platform.PublishOutcome{PlatformID: publishedID, Link: link}, nil
}

func (d *Driver) wait(delay time.Duration) {
	if delay > 0 {
		time.Sleep(delay)
	}
}

func (d *Driver) createContainer(ctx context.Context, account *socialaccount.Account, form url.Values) (string, error) {
	form.Set("access_token", account.AccessToken())
	endpoint := fmt.Sprintf("%s/%s/media", d.cfg.APIURL, account.PlatformUserID())

	var out struct {
		ID string `json:"id"`
	}
	if err := d.doForm(ctx, endpoint, form, "create_container", &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (d *Driver) publishContainer(ctx context.Context, account *socialaccount.Account, containerID string) (string, error) {
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {account.AccessToken()},
	}
	endpoint := fmt.Sprintf("%s/%s/media_publish", d.cfg.APIURL, account.PlatformUserID())

	var out struct {
		ID string `json:"id"`
	}
	if err := d.doForm(ctx, endpoint, form, "publish_container", &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// instagramErrorBody mirrors the Graph API's nested error envelope
// (spec §4.4: "extracts the nested error.{message,code,type,fbtrace_id}
// object").
type instagramErrorBody struct {
	Error struct {
		Message  string `json:"message"`
		Type     string `json:"type"`
		Code     int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (d *Driver) doForm(ctx context.Context, endpoint string, form url.Values, phase string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("instagram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("instagram: %s: %w", phase, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("instagram: %s: read body: %w", phase, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody instagramErrorBody
		_ = json.Unmarshal(body, &errBody)
		d.log.Error("instagram driver error",
			zap.String("phase", phase),
			zap.Int("http_status", resp.StatusCode),
			zap.Int("code", errBody.Error.Code),
			zap.String("fbtrace_id", errBody.Error.FBTraceID),
		)
		return &platform.APIError{
			Platform:   "instagram",
			HTTPStatus: resp.StatusCode,
			Code:       fmt.Sprintf("%d", errBody.Error.Code),
			Message:    errBody.Error.Message,
			TraceID:    errBody.Error.FBTraceID,
		}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("instagram: %s: decode response: %w", phase, err)
		}
	}
	return nil
}
