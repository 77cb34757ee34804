package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type batchSweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (int, error)
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// sweeper drops abandoned upload batches and expired sessions.
type sweeper struct {
	uploads  batchSweeper
	sessions sessionPurger
	batchTTL time.Duration
	log      zerolog.Logger
}

func (s *sweeper) run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *sweeper) sweepOnce(ctx context.Context) {
	if s.batchTTL > 0 {
		n, err := s.uploads.Sweep(ctx, s.batchTTL)
		if err != nil {
			s.log.Warn().Err(err).Msg("sweep upload batches")
		} else if n > 0 {
			s.log.Info().Int("batches", n).Msg("expired upload batches dropped")
		}
	}

	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("purge sessions")
		return
	}
	if n > 0 {
		s.log.Info().Int64("sessions", n).Msg("expired sessions purged")
	}
}
