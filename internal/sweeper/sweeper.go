// Package sweeper removes places older than the retention window on a fixed
// cadence. Pins on this map are ephemeral by design; the sweeper is what
// makes that true.
package sweeper

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"campusmap/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmap_sweeps_total",
		Help: "Retention sweep runs by outcome",
	}, []string{"outcome"})

	sweptPlaces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusmap_swept_places_total",
		Help: "Places removed by the retention sweeper",
	})
)

const maxBackoff = 10 * time.Minute

// Sweeper periodically deletes places past their retention window.
type Sweeper struct {
	places    repository.PlaceRepository
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Sweeper that runs every interval and removes places older
// than retention.
func New(places repository.PlaceRepository, interval, retention time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		places:    places,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start launches the background loop. Starting an already-running sweeper is
// a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	// Jitter the first run so replicas starting together do not sweep in
	// lockstep.
	delay := time.Duration(rand.Int63n(int64(s.interval)))
	backoff := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay + backoff):
		}

		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			if backoff == 0 {
				backoff = s.interval
			} else {
				backoff *= 2
			}
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			s.logger.Error("retention sweep failed", "error", err, "backoff", backoff)
		} else {
			backoff = 0
		}

		delay = s.interval
	}
}

// Sweep runs a single pass against the given clock and returns how many
// places were removed.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.retention)

	removed, err := s.places.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		sweepsTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	sweepsTotal.WithLabelValues("ok").Inc()
	sweptPlaces.Add(float64(removed))

	if removed > 0 {
		s.logger.Info("retention sweep completed", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
