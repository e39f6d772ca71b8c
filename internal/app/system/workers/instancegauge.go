// internal/app/system/workers/instancegauge.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sizer reports a current count.
type Sizer interface {
	Len() int
}

// InstanceGauge periodically publishes the number of cached dashboard
// instances. Expired instances leave the cache on their own, so the gauge
// set on insert alone would drift upward.
type InstanceGauge struct {
	source   Sizer
	set      func(int)
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewInstanceGauge creates a worker that calls set(source.Len()) every
// interval.
func NewInstanceGauge(source Sizer, set func(int), logger *zap.Logger, interval time.Duration) *InstanceGauge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstanceGauge{
		source:   source,
		set:      set,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *InstanceGauge) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("dashboard instance gauge started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *InstanceGauge) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("dashboard instance gauge stopped")
	})
}

func (w *InstanceGauge) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.set(w.source.Len())
		}
	}
}
