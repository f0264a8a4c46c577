package services

import (
	"cmp"
	"context"
	"errors"
	"time"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/repositories"
)

// SystemServiceDeps wires the readiness probes and build metadata.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
	Build            BuildInfo
}

type systemService struct {
	probes repositories.HealthRepository
	now    func() time.Time
	build  BuildInfo
}

var _ SystemService = (*systemService)(nil)

// NewSystemService builds the service behind /healthz and /readyz.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	svc := &systemService{
		probes: deps.HealthRepository,
		now:    func() time.Time { return clock().UTC() },
		build:  deps.Build,
	}
	if svc.build.StartedAt.IsZero() {
		svc.build.StartedAt = svc.now()
	}
	return svc, nil
}

func (s *systemService) BuildInfo() BuildInfo {
	return s.build
}

// HealthReport runs the probes and stamps the report with build metadata. A status
// left blank by the repository is derived from the checks.
func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	report, err := s.probes.Collect(ctx)
	if err != nil {
		return SystemHealthReport{}, err
	}

	now := s.now()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	report.Version = cmp.Or(report.Version, s.build.Version)
	report.CommitSHA = cmp.Or(report.CommitSHA, s.build.CommitSHA)
	report.Environment = cmp.Or(report.Environment, s.build.Environment)
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	if report.Checks == nil {
		report.Checks = map[string]domain.SystemHealthCheck{}
	}
	if report.Status == "" {
		report.Status = domain.OverallHealthStatus(report.Checks)
	}
	return report, nil
}
