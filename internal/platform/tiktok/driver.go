// Package tiktok implements the TikTok Content Posting API driver (spec
// §4.5): creator-info guard, direct-post initialization, chunked file
// upload, and an execute-with-refresh wrapper around every TikTok-facing
// call. HTTP call shape is grounded on the teacher's
// internal/adapters/social/twitter/client.go; the refresh-and-retry
// wrapper is grounded on that same file's ExchangeCode/RefreshToken
// pair, generalized into a reusable decorator. The per-account refresh
// lock is pluggable (platform.RefreshLock): a single process uses
// platform.SingleflightLock, a multi-process deployment a
// platform.RedisLock.
package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/objectstore"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

const (
	maxCaptionLength = 150
	singleChunkLimit = 64 * 1024 * 1024
	chunkSize        = 10 * 1024 * 1024
)

type Config struct {
	APIURL       string
	ClientKey    string
	ClientSecret string
	CallbackURL  string

	// CallTimeout bounds JSON API calls (creator-info, init, refresh;
	// spec §5, default 30s). UploadTimeout bounds each chunked upload
	// PUT (spec §5, default 120s). Zero falls back to the default.
	CallTimeout   time.Duration
	UploadTimeout time.Duration
}

type Driver struct {
	cfg          Config
	httpClient   *http.Client
	uploadClient *http.Client
	log          *zap.Logger
	objects      objectstore.Gateway
	accounts     store.SocialAccountStore
	lock         platform.RefreshLock
}

const (
	defaultCallTimeout   = 30 * time.Second
	defaultUploadTimeout = 120 * time.Second
)

func New(cfg Config, log *zap.Logger, objects objectstore.Gateway, accounts store.SocialAccountStore, lock platform.RefreshLock) *Driver {
	if lock == nil {
		lock = platform.NewSingleflightLock()
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	uploadTimeout := cfg.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}
	return &Driver{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: callTimeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
		log:          log,
		objects:      objects,
		accounts:     accounts,
		lock:         lock,
	}
}

func (d *Driver) Platform() socialaccount.Platform { return socialaccount.PlatformTikTok }

func (d *Driver) Validate(format publication.Format, pub *store.PublicationForPublish) error {
	videoURL := ""
	if len(pub.Media) > 0 {
		videoURL = pub.Media[0].Media.URL()
	}
	if videoURL == "" {
		return fmt.Errorf("tiktok: requires a video_url or file_path")
	}
	caption := pub.Publication.Caption(pub.ContentCaption)
	if len(caption) > maxCaptionLength {
		return fmt.Errorf("tiktok: description exceeds %d characters", maxCaptionLength)
	}
	return nil
}

func (d *Driver) Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error {
	return platform.ErrCancelUnsupported
}

func (d *Driver) Publish(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
	account := pub.Account
	caption := truncate(pub.Publication.Caption(pub.ContentCaption), maxCaptionLength)
	media := pub.Media[0].Media

	privacyLevel, disableComment, disableDuet, disableStitch, err := d.resolvePostOptions(ctx, account, pub)
	if err != nil {
		return nil, err
	}

	tmpPath, size, err := d.objects.DownloadToTempFile(ctx, pub.Publication.ID(), media.URL())
	if err != nil {
		return nil, fmt.Errorf("tiktok: stage video: %w", err)
	}
	defer os.Remove(tmpPath)

	publishID, uploadURL, err := d.initDirectPost(ctx, account, caption, size, privacyLevel, disableComment, disableDuet, disableStitch)
	if err != nil {
		return nil, err
	}

	if err := d.uploadChunks(ctx, uploadURL, tmpPath, size); err != nil {
		return nil, err
	}

	return &platform.PublishOutcome{PlatformID: publishID}, nil
}

// resolvePostOptions applies the creator-info guard (spec §4.5): if the
// requested privacy level isn't in the creator's advertised options, the
// driver substitutes the first advertised option and logs it.
func (d *Driver) resolvePostOptions(ctx context.Context, account *socialaccount.Account, pub *store.PublicationForPublish) (privacy string, disableComment, disableDuet, disableStitch bool, err error) {
	requested, _ := pub.Publication.PlatformConfig()["privacyLevel"].(string)
	if b, ok := pub.Publication.PlatformConfig()["disableComment"].(bool); ok {
		disableComment = b
	}
	if b, ok := pub.Publication.PlatformConfig()["disableDuet"].(bool); ok {
		disableDuet = b
	}
	if b, ok := pub.Publication.PlatformConfig()["disableStitch"].(bool); ok {
		disableStitch = b
	}

	info, err := d.creatorInfo(ctx, account)
	if err != nil {
		return "", false, false, false, err
	}
	if len(info.PrivacyLevelOptions) == 0 {
		return requested, disableComment, disableDuet, disableStitch, nil
	}
	for _, opt := range info.PrivacyLevelOptions {
		if opt == requested {
			return requested, disableComment, disableDuet, disableStitch, nil
		}
	}
	d.log.Warn("tiktok: requested privacy level unsupported by creator, substituting first advertised option",
		zap.String("requested", requested), zap.String("substituted", info.PrivacyLevelOptions[0]))
	return info.PrivacyLevelOptions[0], disableComment || info.CommentDisabled, disableDuet || info.DuetDisabled, disableStitch || info.StitchDisabled, nil
}

type creatorInfoResponse struct {
	Data struct {
		PrivacyLevelOptions []string `json:"privacy_level_options"`
		MaxVideoPostDuration int     `json:"max_video_post_duration_sec"`
		CommentDisabled      bool    `json:"comment_disabled"`
		DuetDisabled         bool    `json:"duet_disabled"`
		StitchDisabled       bool    `json:"stitch_disabled"`
	} `json:"data"`
}

type creatorInfo struct {
	PrivacyLevelOptions []string
	CommentDisabled     bool
	DuetDisabled        bool
	StitchDisabled      bool
}

func (d *Driver) creatorInfo(ctx context.Context, account *socialaccount.Account) (*creatorInfo, error) {
	var resp creatorInfoResponse
	err := d.executeWithRefresh(ctx, account, func(accessToken string) error {
		return d.doJSON(ctx, http.MethodPost, d.cfg.APIURL+"/v2/post/publish/creator_info/query/", accessToken, nil, "creator_info", &resp)
	})
	if err != nil {
		return nil, err
	}
	return &creatorInfo{
		PrivacyLevelOptions: resp.Data.PrivacyLevelOptions,
		CommentDisabled:     resp.Data.CommentDisabled,
		DuetDisabled:        resp.Data.DuetDisabled,
		StitchDisabled:      resp.Data.StitchDisabled,
	}, nil
}

// chunkPlan implements spec §4.5's chunking math.
func chunkPlan(videoSize int64) (size int64, count int) {
	if videoSize <= singleChunkLimit {
		return videoSize, 1
	}
	return chunkSize, int(math.Ceil(float64(videoSize) / float64(chunkSize)))
}

func (d *Driver) initDirectPost(ctx context.Context, account *socialaccount.Account, caption string, videoSize int64, privacy string, disableComment, disableDuet, disableStitch bool) (publishID, uploadURL string, err error) {
	size, count := chunkPlan(videoSize)

	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":           caption,
			"privacy_level":   privacy,
			"disable_comment": disableComment,
			"disable_duet":    disableDuet,
			"disable_stitch":  disableStitch,
		},
		"source_info": map[string]interface{}{
			"source":            "FILE_UPLOAD",
			"video_size":         videoSize,
			"chunk_size":         size,
			"total_chunk_count":  count,
		},
	}

	var resp struct {
		Data struct {
			PublishID string `json:"publish_id"`
			UploadURL string `json:"upload_url"`
		} `json:"data"`
	}

	err = d.executeWithRefresh(ctx, account, func(accessToken string) error {
		return d.doJSON(ctx, http.MethodPost, d.cfg.APIURL+"/v2/post/publish/video/init/", accessToken, payload, "direct_post_init", &resp)
	})
	if err != nil {
		return "", "", err
	}
	return resp.Data.PublishID, resp.Data.UploadURL, nil
}

// uploadChunks streams the temp file to uploadURL in the chunks
// initDirectPost negotiated (spec §4.5): each PUT carries
// Content-Type/Content-Length/Content-Range; the final chunk's range
// ends at videoSize-1; any chunk failure fails the whole upload fast.
func (d *Driver) uploadChunks(ctx context.Context, uploadURL, path string, videoSize int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tiktok: open staged video: %w", err)
	}
	defer f.Close()

	size, count := chunkPlan(videoSize)
	for i := 0; i < count; i++ {
		start := int64(i) * size
		end := start + size - 1
		if end >= videoSize {
			end = videoSize - 1
		}
		length := end - start + 1

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, io.NewSectionReader(f, start, length))
		if err != nil {
			return fmt.Errorf("tiktok: build chunk request: %w", err)
		}
		req.Header.Set("Content-Type", "video/mp4")
		req.Header.Set("Content-Length", strconv.FormatInt(length, 10))
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, videoSize))
		req.ContentLength = length

		resp, err := d.uploadClient.Do(req)
		if err != nil {
			return fmt.Errorf("tiktok: upload chunk %d: %w", i, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &platform.APIError{Platform: "tiktok", HTTPStatus: resp.StatusCode, Message: string(body)}
		}
	}
	return nil
}

// executeWithRefresh implements spec §4.5's execute-with-refresh
// wrapper: attempt op with the current token; on a recognized
// token-invalid failure, refresh exactly once (guarded per account by
// d.lock, the configured RefreshLock, so concurrent dispatcher workers
// don't refresh the same account at the same time) and retry exactly once.
func (d *Driver) executeWithRefresh(ctx context.Context, account *socialaccount.Account, op func(accessToken string) error) error {
	err := op(account.AccessToken())
	if err == nil {
		return nil
	}
	if !isTokenInvalid(err) {
		return err
	}

	key := account.ID().String()
	if refreshErr := d.lock.Do(ctx, key, func() error {
		return d.refresh(ctx, account)
	}); refreshErr != nil {
		return fmt.Errorf("tiktok: refresh after token-invalid: %w", refreshErr)
	}

	return op(account.AccessToken())
}

func isTokenInvalid(err error) bool {
	var apiErr *platform.APIError
	if e, ok := err.(*platform.APIError); ok {
		apiErr = e
	}
	if apiErr == nil {
		return false
	}
	return apiErr.HTTPStatus == http.StatusUnauthorized || apiErr.Code == "access_token_invalid"
}

func (d *Driver) refresh(ctx context.Context, account *socialaccount.Account) error {
	form := url.Values{
		"client_key":    {d.cfg.ClientKey},
		"client_secret": {d.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {account.RefreshToken()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.APIURL+"/v2/oauth/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("tiktok: build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok: refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &platform.APIError{Platform: "tiktok", HTTPStatus: resp.StatusCode, Message: string(body)}
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("tiktok: decode refresh response: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	account.ApplyRefreshedTokens(tokenResp.AccessToken, tokenResp.RefreshToken, expiresAt)

	if d.accounts != nil {
		if err := d.accounts.UpdateTokens(ctx, account.ID(), tokenResp.AccessToken, tokenResp.RefreshToken, expiresAt); err != nil {
			return fmt.Errorf("tiktok: persist refreshed tokens: %w", err)
		}
	}
	return nil
}

func (d *Driver) doJSON(ctx context.Context, method, endpoint, accessToken string, payload interface{}, phase string, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("tiktok: encode %s payload: %w", phase, err)
		}
		bodyReader = strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("tiktok: build %s request: %w", phase, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok: %s: %w", phase, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tiktok: %s: read body: %w", phase, err)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			LogID   string `json:"log_id"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &platform.APIError{
			Platform:   "tiktok",
			HTTPStatus: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			TraceID:    envelope.Error.LogID,
		}
	}

	// The TikTok envelope reports business-logic failures (including
	// access_token_invalid) at HTTP 200: error.code=="ok" is the only
	// success value.
	if envelope.Error.Code != "" && envelope.Error.Code != "ok" {
		return &platform.APIError{
			Platform:   "tiktok",
			HTTPStatus: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			TraceID:    envelope.Error.LogID,
		}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("tiktok: %s: decode response: %w", phase, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
