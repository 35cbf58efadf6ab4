// Package dispatcher advances due publications from SCHEDULED through
// publishing to a terminal state (spec §4.6). The tick-and-claim loop is
// grounded on cmd/worker/publish_post.go's ticker-based Run() loop and
// JobProcessor{Name,Run,Stop} shape, generalized: the claim primitive
// replaces the worker's racy Redis-queue-length pseudo-lock with the
// store's transactional ClaimDue, and the per-failure handling replaces
// post.Service's backoff-on-failure with spec.md's deliberate
// no-retry-from-ERROR simplification.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

type Config struct {
	// Schedule is either a standard 5-field cron expression (no seconds
	// field) or a plain Go duration string (e.g. "2s"); New resolves both,
	// trying the duration form first (spec §9 Open Question).
	Schedule string
	// BatchSize bounds how many publications a single tick claims.
	BatchSize int
	// Concurrency bounds the worker pool a tick fans claimed work out to.
	Concurrency int
	// PublicationTimeout bounds a single publication's end-to-end
	// attempt (validate, rate-limit wait, publish). On expiry the
	// attempt is aborted and the publication is marked ERROR with an
	// explicit "timeout" message (spec §5). Zero falls back to the
	// default.
	PublicationTimeout time.Duration
}

const defaultPublicationTimeout = 150 * time.Second

type Dispatcher struct {
	cfg          Config
	publications store.PublicationStore
	registry     *platform.Registry
	limiter      *RateLimiter
	log          *zap.Logger

	cronSched cron.Schedule
	interval  time.Duration

	stop chan struct{}
	done chan struct{}
}

func New(cfg Config, publications store.PublicationStore, registry *platform.Registry, log *zap.Logger) (*Dispatcher, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PublicationTimeout <= 0 {
		cfg.PublicationTimeout = defaultPublicationTimeout
	}

	d := &Dispatcher{
		cfg:          cfg,
		publications: publications,
		registry:     registry,
		limiter:      NewRateLimiter(),
		log:          log,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	if interval, err := time.ParseDuration(cfg.Schedule); err == nil {
		d.interval = interval
		return d, nil
	}
	sched, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: schedule %q is neither a duration nor a cron expression: %w", cfg.Schedule, err)
	}
	d.cronSched = sched
	return d, nil
}

// Run blocks, firing one tick per schedule period until Stop is called
// or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	next := d.nextFire(time.Now())
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopping: context cancelled")
			return
		case <-d.stop:
			d.log.Info("dispatcher stopping")
			return
		case <-timer.C:
			if err := d.tick(ctx); err != nil {
				d.log.Error("dispatcher tick failed", zap.Error(err))
			}
			next = d.nextFire(time.Now())
			timer.Reset(time.Until(next))
		}
	}
}

func (d *Dispatcher) nextFire(from time.Time) time.Time {
	if d.cronSched != nil {
		return d.cronSched.Next(from)
	}
	return from.Add(d.interval)
}

func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
}

// tick implements spec §4.6 step 1-3: claim, dispatch with bounded
// concurrency, record terminal state even when the driver errors.
func (d *Dispatcher) tick(ctx context.Context) error {
	claimed, err := d.publications.ClaimDue(ctx, time.Now().UTC(), d.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("claim due publications: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	d.log.Info("dispatcher claimed publications", zap.Int("count", len(claimed)))

	sem := make(chan struct{}, d.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, p := range claimed {
		p := p
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			d.publishOne(ctx, p)
		}()
	}
	wg.Wait()
	return nil
}

func (d *Dispatcher) publishOne(ctx context.Context, p *store.PublicationForPublish) {
	id := p.Publication.ID()
	log := d.log.With(zap.String("publication_id", id.String()), zap.String("platform", string(p.Publication.Platform())))

	attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.PublicationTimeout)
	defer cancel()

	driver, ok := d.registry.Lookup(p.Publication.Platform())
	if !ok {
		d.markError(ctx, id, log, fmt.Errorf("no driver registered for platform %s", p.Publication.Platform()))
		return
	}

	if err := driver.Validate(p.Publication.Format(), p); err != nil {
		d.markError(ctx, id, log, fmt.Errorf("validation failed: %w", err))
		return
	}

	if err := d.limiter.Wait(attemptCtx, p.Account.Platform(), p.Account.ID().String()); err != nil {
		d.markError(ctx, id, log, d.deadlineAware(attemptCtx, fmt.Errorf("rate limiter: %w", err)))
		return
	}

	outcome, err := driver.Publish(attemptCtx, p)
	if err != nil {
		d.markError(ctx, id, log, d.deadlineAware(attemptCtx, err))
		return
	}

	var platformID, link *string
	if outcome.PlatformID != "" {
		platformID = &outcome.PlatformID
	}
	if outcome.Link != "" {
		link = &outcome.Link
	}
	if err := d.publications.MarkPublished(ctx, id, platformID, link); err != nil {
		log.Error("failed to record published state", zap.Error(err))
		return
	}
	log.Info("publication published")
}

// deadlineAware reports the attempt's deadline expiry as an explicit
// "timeout" failure (spec §5) rather than whatever context.Canceled-
// wrapping error the driver happened to surface.
func (d *Dispatcher) deadlineAware(attemptCtx context.Context, cause error) error {
	if attemptCtx.Err() == context.DeadlineExceeded {
		return errors.New("timeout")
	}
	return cause
}

func (d *Dispatcher) markError(ctx context.Context, id uuid.UUID, log *zap.Logger, cause error) {
	log.Error("publication failed", zap.Error(cause))
	if err := d.publications.MarkError(ctx, id, cause.Error()); err != nil {
		log.Error("failed to record error state", zap.Error(err))
	}
}
