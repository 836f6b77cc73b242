package tickets

import (
	"context"
	"sync"
	"time"

	"viabus/pkg/logger"
)

// ExpiryProcessor periodically cancels unpaid reservations that outlived
// their hold window, freeing the seats for sale again.
type ExpiryProcessor struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

func NewExpiryProcessor(service Service, interval time.Duration) *ExpiryProcessor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiryProcessor{
		service:  service,
		interval: interval,
		log:      logger.GetDefault(),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (p *ExpiryProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)
	p.log.InfoWithContext(ctx, "reservation expiry processor started", map[string]interface{}{
		"interval": p.interval.String(),
	})
}

// Stop signals the loop to exit and waits for the in-flight sweep.
func (p *ExpiryProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
}

func (p *ExpiryProcessor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *ExpiryProcessor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	count, err := p.service.ExpireStaleReservations(sweepCtx)
	if err != nil {
		p.log.WithError(err).ErrorContext(ctx, "reservation expiry sweep failed")
		return
	}
	if count > 0 {
		p.log.InfoWithContext(ctx, "expired stale reservations", map[string]interface{}{
			"count": count,
		})
	}
}
