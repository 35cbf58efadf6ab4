package sharelink

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs Service.Sweep every minute (spec §4.7), using
// robfig/cron/v3 as the minute-interval scheduler.
type Sweeper struct {
	svc *Service
	log *zap.Logger
	c   *cron.Cron
}

func NewSweeper(svc *Service, log *zap.Logger) *Sweeper {
	return &Sweeper{svc: svc, log: log, c: cron.New()}
}

func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.c.AddFunc("@every 1m", func() {
		n, err := s.svc.Sweep(ctx)
		if err != nil {
			s.log.Error("share link sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.log.Info("share link sweep deactivated expired links", zap.Int64("count", n))
		}
	})
	if err != nil {
		return err
	}
	s.c.Start()
	return nil
}

func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
