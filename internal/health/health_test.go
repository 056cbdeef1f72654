package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name    string
	healthy atomic.Bool
}

func (s *stubChecker) Name() string                                      { return s.name }
func (s *stubChecker) IsHealthy() bool                                   { return s.healthy.Load() }
func (s *stubChecker) Start(ctx context.Context, interval time.Duration) {}

func TestServiceHealthAggregation(t *testing.T) {
	a := &stubChecker{name: "a"}
	b := &stubChecker{name: "b"}
	a.healthy.Store(true)
	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	// one dependency down keeps the service down
	assert.Eventually(t, func() bool { return !svc.IsHealthy() }, time.Second, 5*time.Millisecond)

	b.healthy.Store(true)
	assert.Eventually(t, svc.IsHealthy, time.Second, 5*time.Millisecond)

	a.healthy.Store(false)
	assert.Eventually(t, func() bool { return !svc.IsHealthy() }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestServiceStartsUnhealthy(t *testing.T) {
	svc := NewServiceHealthChecker(zerolog.Nop())
	assert.False(t, svc.IsHealthy())
}
