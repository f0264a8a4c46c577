package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/sash-studio/api/internal/domain"
)

const defaultDependencyTimeout = 1500 * time.Millisecond

// DependencyCheck probes one downstream dependency. A failing Optional dependency
// reports degraded instead of error.
type DependencyCheck struct {
	Name     string
	Optional bool
	Timeout  time.Duration
	Check    func(context.Context) error
}

// DependencyHealthOption customises the dependency health repository.
type DependencyHealthOption func(*dependencyHealthRepository)

// WithDependencyTimeout sets the timeout for checks that do not declare one.
func WithDependencyTimeout(timeout time.Duration) DependencyHealthOption {
	return func(r *dependencyHealthRepository) {
		if timeout > 0 {
			r.defaultTimeout = timeout
		}
	}
}

// WithDependencyClock injects the clock used for timestamps and latency.
func WithDependencyClock(clock func() time.Time) DependencyHealthOption {
	return func(r *dependencyHealthRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

type dependencyHealthRepository struct {
	checks         []DependencyCheck
	defaultTimeout time.Duration
	now            func() time.Time
}

// NewDependencyHealthRepository validates checks and returns a HealthRepository running them
// concurrently on every Collect.
func NewDependencyHealthRepository(checks []DependencyCheck, opts ...DependencyHealthOption) (HealthRepository, error) {
	if len(checks) == 0 {
		return nil, errors.New("health repository: at least one dependency check is required")
	}
	for _, check := range checks {
		if strings.TrimSpace(check.Name) == "" {
			return nil, errors.New("health repository: dependency check missing name")
		}
		if check.Check == nil {
			return nil, fmt.Errorf("health repository: dependency %s missing check function", check.Name)
		}
	}

	r := &dependencyHealthRepository{
		checks:         append([]DependencyCheck(nil), checks...),
		defaultTimeout: defaultDependencyTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

func (r *dependencyHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	results := make(map[string]domain.SystemHealthCheck, len(r.checks))
	var mu sync.Mutex
	var g errgroup.Group

	for _, check := range r.checks {
		g.Go(func() error {
			result := r.run(ctx, check)
			mu.Lock()
			results[check.Name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return domain.SystemHealthReport{
		Status:      domain.OverallHealthStatus(results),
		Checks:      results,
		GeneratedAt: r.now(),
	}, nil
}

func (r *dependencyHealthRepository) run(ctx context.Context, check DependencyCheck) domain.SystemHealthCheck {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := r.now()
	err := check.Check(checkCtx)
	end := r.now()

	result := domain.SystemHealthCheck{
		Status:    domain.HealthStatusOK,
		Optional:  check.Optional,
		Detail:    "ok",
		Latency:   end.Sub(start),
		CheckedAt: end,
	}
	if err == nil {
		err = checkCtx.Err()
	}
	if err == nil {
		return result
	}

	result.Status = domain.HealthStatusError
	if check.Optional {
		result.Status = domain.HealthStatusDegraded
	}
	result.Error = err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.Detail = "timeout"
	case errors.Is(err, context.Canceled):
		result.Detail = "cancelled"
	default:
		result.Detail = "unavailable"
	}
	return result
}
