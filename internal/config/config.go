// Package config loads the environment table from spec §6. Names are
// preserved verbatim for operator familiarity; only the loading mechanism
// is new relative to the teacher (viper instead of a bare os.Getenv map).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL string
	Port        string
	NodeEnv     string

	AuthIssuerDomain string
	AuthAudience     string
	AuthIssuer       string

	Instagram InstagramConfig
	TikTok    TikTokConfig

	CronPublisherSchedule string
	CronBatchSize         int

	// PlatformCallTimeout bounds every outbound platform API call
	// (spec §5: default 30s); PlatformUploadTimeout bounds chunked
	// media upload calls specifically (spec §5: default 120s).
	PlatformCallTimeout   time.Duration
	PlatformUploadTimeout time.Duration

	// PublicationTimeout bounds the dispatcher's per-publication
	// attempt end to end (spec §5); it should be no less than
	// PlatformCallTimeout+PlatformUploadTimeout for platforms that
	// chain both within one attempt (the defaults, 150s = 30s+120s,
	// are exactly equal).
	PublicationTimeout time.Duration

	R2 R2Config

	// RedisURL is optional. Unset means this process is the only one
	// ever running the dispatcher, so the in-process singleflight
	// refresh lock suffices; set it when running the dispatcher on more
	// than one node (spec §5's supported multi-process mode).
	RedisURL string

	// TokenEncryptionKey is the 32-byte ChaCha20-Poly1305 key social
	// account access/refresh tokens are encrypted with at rest.
	TokenEncryptionKey string

	CORSOrigins      []string
	MaxMediaPerContent int
}

type InstagramConfig struct {
	APIURL         string
	MediaWaitTime  time.Duration
	VideoWaitTime  time.Duration
}

type TikTokConfig struct {
	APIURL       string
	ClientKey    string
	ClientSecret string
	CallbackURL  string
}

type R2Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicDomain    string
}

// Load reads the environment table into a Config and validates it. Missing
// required variables are fatal (returned as an error the caller should
// treat as an exit-code-1 condition); missing optional platform
// credentials are logged as warnings only, mirroring the teacher's
// validateSocialConfig fatal/warn split in cmd/server/social_setup.go.
func Load(logger *zap.Logger) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("INSTAGRAM_API_URL", "https://graph.facebook.com/v19.0")
	v.SetDefault("INSTAGRAM_MEDIA_WAIT_TIME", "10s")
	v.SetDefault("INSTAGRAM_VIDEO_WAIT_TIME", "30s")
	v.SetDefault("TIKTOK_API_URL", "https://open.tiktokapis.com")
	v.SetDefault("CRON_PUBLISHER_SCHEDULE", "2s")
	v.SetDefault("CRON_BATCH_SIZE", 10)
	v.SetDefault("PLATFORM_CALL_TIMEOUT", "30s")
	v.SetDefault("PLATFORM_UPLOAD_TIMEOUT", "120s")
	v.SetDefault("PUBLICATION_TIMEOUT", "150s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MAX_MEDIA_PER_CONTENT", 10)

	cfg := &Config{
		DatabaseURL:           v.GetString("DATABASE_URL"),
		Port:                  v.GetString("PORT"),
		NodeEnv:                v.GetString("NODE_ENV"),
		AuthIssuerDomain:      v.GetString("AUTH_ISSUER_DOMAIN"),
		AuthAudience:          v.GetString("AUTH_AUDIENCE"),
		AuthIssuer:            v.GetString("AUTH_ISSUER"),
		CronPublisherSchedule: v.GetString("CRON_PUBLISHER_SCHEDULE"),
		CronBatchSize:         v.GetInt("CRON_BATCH_SIZE"),
		PlatformCallTimeout:   v.GetDuration("PLATFORM_CALL_TIMEOUT"),
		PlatformUploadTimeout: v.GetDuration("PLATFORM_UPLOAD_TIMEOUT"),
		PublicationTimeout:    v.GetDuration("PUBLICATION_TIMEOUT"),
		CORSOrigins:           strings.Split(v.GetString("CORS_ORIGINS"), ","),
		MaxMediaPerContent:    v.GetInt("MAX_MEDIA_PER_CONTENT"),
		Instagram: InstagramConfig{
			APIURL:        v.GetString("INSTAGRAM_API_URL"),
			MediaWaitTime: v.GetDuration("INSTAGRAM_MEDIA_WAIT_TIME"),
			VideoWaitTime: v.GetDuration("INSTAGRAM_VIDEO_WAIT_TIME"),
		},
		TikTok: TikTokConfig{
			APIURL:       v.GetString("TIKTOK_API_URL"),
			ClientKey:    v.GetString("TIKTOK_CLIENT_KEY"),
			ClientSecret: v.GetString("TIKTOK_CLIENT_SECRET"),
			CallbackURL:  v.GetString("TIKTOK_CALLBACK_URL"),
		},
		R2: R2Config{
			AccountID:       v.GetString("R2_ACCOUNT_ID"),
			BucketName:      v.GetString("R2_BUCKET_NAME"),
			AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
			PublicDomain:    v.GetString("R2_PUBLIC_DOMAIN"),
		},
		RedisURL:           v.GetString("REDIS_URL"),
		TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
	}

	if err := cfg.validate(logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate mirrors cmd/server/social_setup.go's fatal-vs-warning split:
// the database connection string is the only hard requirement for the
// core to run at all; platform credentials are warned about individually
// because a deployment may legitimately run with only a subset of
// platforms enabled.
func (c *Config) validate(logger *zap.Logger) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.TikTok.ClientKey == "" || c.TikTok.ClientSecret == "" {
		logger.Warn("TikTok credentials not configured, TikTok publishing will fail at the OAuth refresh step",
			zap.String("missing", "TIKTOK_CLIENT_KEY/TIKTOK_CLIENT_SECRET"))
	}
	if c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" {
		logger.Warn("object storage credentials not configured, media upload presigning will fail",
			zap.String("missing", "R2_ACCESS_KEY_ID/R2_SECRET_ACCESS_KEY"))
	}
	if c.AuthIssuer == "" {
		logger.Warn("AUTH_ISSUER not configured, bearer token validation will reject every request")
	}
	if c.TokenEncryptionKey == "" {
		logger.Warn("TOKEN_ENCRYPTION_KEY not configured, social account tokens will be stored in plaintext")
	} else if len(c.TokenEncryptionKey) != 32 {
		return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 32 bytes")
	}

	return nil
}
