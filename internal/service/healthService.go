package service

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/negative-web/internal/entity"
	"github.com/ds124wfegd/negative-web/internal/pkg/backend"
	"golang.org/x/sync/errgroup"
)

type healthService struct {
	prober Prober
}

func NewHealthService(prober Prober) HealthService {
	return &healthService{prober: prober}
}

// Backends probes both echo services in parallel. Every result is returned;
// the error names the first backend found unhealthy.
func (s *healthService) Backends(ctx context.Context) ([]backend.ProbeResult, error) {
	endpoints := []entity.Endpoint{entity.Service1, entity.Service2}
	results := make([]backend.ProbeResult, len(endpoints))

	// no shared context: one failing probe must not cut the other short
	var g errgroup.Group
	for i, endpoint := range endpoints {
		g.Go(func() error {
			results[i] = s.prober.Probe(ctx, endpoint)
			if !results[i].Healthy {
				return fmt.Errorf("%w: %s", entity.ErrBackendUnhealthy, endpoint)
			}
			return nil
		})
	}
	return results, g.Wait()
}
