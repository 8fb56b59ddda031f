package metrics

import (
	"context"
	"log"
	"sync"
	"time"
)

// Reporter periodically logs a one-line summary of cache statistics.
//
// Reporter owns its goroutine. Call Close to stop it.
type Reporter struct {
	src      StatsSource
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewReporter starts logging every interval. interval <= 0 starts nothing;
// Close is still safe to call.
func NewReporter(src StatsSource, interval time.Duration, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	r := &Reporter{
		src:      src,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	if interval > 0 {
		r.wg.Add(1)
		go r.loop()
	}
	return r
}

func (r *Reporter) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	s := r.src.Stats()
	ratio := 0.0
	if total := s.Hits + s.Misses; total > 0 {
		ratio = float64(s.Hits) / float64(total)
	}
	r.logger.Printf("cache stats: entries=%d/%d hits=%d misses=%d evictions=%d hit_ratio=%.2f",
		r.src.Len(), r.src.Capacity(), s.Hits, s.Misses, s.Evictions, ratio)
}

// Close stops the reporter goroutine and waits for it to exit.
//
// Close is safe to call multiple times.
func (r *Reporter) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return nil
}
