package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mbarreto/botcore/internal/metrics"
)

// Service is one configured dependency with its checker and per-check
// timeout.
type Service struct {
	Name    string
	Checker Checker
	Timeout time.Duration
}

// Prober fans out one bounded probe per configured service and joins
// the results into a single snapshot. Wall-clock cost is bounded by
// the slowest individual check, not the sum: checks run concurrently
// and a hung dependency degrades only its own entry.
type Prober struct {
	mu       sync.RWMutex
	services []Service
	logger   *slog.Logger
}

// NewProber creates a Prober over the given services.
func NewProber(logger *slog.Logger, services ...Service) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{services: services, logger: logger}
}

// AddService registers an additional service. A duplicate name
// replaces the previous entry.
func (p *Prober) AddService(s Service) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.services {
		if existing.Name == s.Name {
			p.services[i] = s
			return
		}
	}
	p.services = append(p.services, s)
}

// CheckAll probes every configured service concurrently and returns a
// snapshot with exactly one Result per service, regardless of
// individual failures. The per-service timeout cancels only that
// check's wait; a caller imposing an overall deadline layers its own
// context around the call.
func (p *Prober) CheckAll(ctx context.Context) map[string]Result {
	p.mu.RLock()
	services := make([]Service, len(p.services))
	copy(services, p.services)
	p.mu.RUnlock()

	results := make(map[string]Result, len(services))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			start := time.Now()
			res := p.checkOne(ctx, svc)
			metrics.ObserveHealthCheck(svc.Name, string(res.Status), time.Since(start).Seconds())
			mu.Lock()
			results[svc.Name] = res
			mu.Unlock()
		}(svc)
	}
	wg.Wait()
	return results
}

// checkOne runs a single probe under its own timeout, converting a
// panicking or missing checker into a Result so the snapshot always
// has a fixed shape.
func (p *Prober) checkOne(ctx context.Context, svc Service) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("health check panicked", "service", svc.Name, "panic", r)
			res = Result{Status: StatusUnknown, Error: fmt.Sprintf("check panicked: %v", r)}
		}
	}()
	if svc.Checker == nil {
		return Result{Status: StatusUnknown, Error: "no checker configured"}
	}
	timeout := svc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return svc.Checker.Check(cctx)
}
