package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	serviceMocks "sharetome/internal/service/mocks"
)

type fakeBatches struct {
	ttl   time.Duration
	calls int
	n     int
	err   error
}

func (f *fakeBatches) Sweep(_ context.Context, ttl time.Duration) (int, error) {
	f.calls++
	f.ttl = ttl
	return f.n, f.err
}

func TestSweeper_SweepOnce(t *testing.T) {
	t.Run("drops batches and sessions", func(t *testing.T) {
		batches := &fakeBatches{n: 2}
		sessions := new(serviceMocks.MockSessionService)
		sessions.On("PurgeExpired", mock.Anything).Return(int64(3), nil).Once()

		var buf bytes.Buffer
		s := &sweeper{uploads: batches, sessions: sessions, batchTTL: time.Hour, log: zerolog.New(&buf)}
		s.sweepOnce(context.Background())

		assert.Equal(t, 1, batches.calls)
		assert.Equal(t, time.Hour, batches.ttl)
		assert.Contains(t, buf.String(), `"batches":2`)
		assert.Contains(t, buf.String(), `"sessions":3`)
		sessions.AssertExpectations(t)
	})

	t.Run("zero ttl keeps batches", func(t *testing.T) {
		batches := &fakeBatches{}
		sessions := new(serviceMocks.MockSessionService)
		sessions.On("PurgeExpired", mock.Anything).Return(int64(0), nil).Once()

		s := &sweeper{uploads: batches, sessions: sessions, log: zerolog.Nop()}
		s.sweepOnce(context.Background())

		assert.Equal(t, 0, batches.calls)
		sessions.AssertExpectations(t)
	})

	t.Run("errors are logged", func(t *testing.T) {
		batches := &fakeBatches{err: errors.New("minio down")}
		sessions := new(serviceMocks.MockSessionService)
		sessions.On("PurgeExpired", mock.Anything).Return(int64(0), errors.New("db down")).Once()

		var buf bytes.Buffer
		s := &sweeper{uploads: batches, sessions: sessions, batchTTL: time.Minute, log: zerolog.New(&buf)}
		s.sweepOnce(context.Background())

		assert.Contains(t, buf.String(), "minio down")
		assert.Contains(t, buf.String(), "db down")
	})
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	sessions := new(serviceMocks.MockSessionService)
	sessions.On("PurgeExpired", mock.Anything).Return(int64(0), nil).Maybe()
	s := &sweeper{uploads: &fakeBatches{}, sessions: sessions, log: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
