package domain

import "time"

// Readiness states. A failing optional dependency only degrades the API because quotes
// keep being priced from the default rule set.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

// SystemHealthCheck is the result of probing one dependency.
type SystemHealthCheck struct {
	Status    string
	Optional  bool
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport combines probe results with build metadata.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// OverallHealthStatus folds check results. Any error wins over degraded; unknown states
// count as errors.
func OverallHealthStatus(checks map[string]SystemHealthCheck) string {
	status := HealthStatusOK
	for _, check := range checks {
		switch check.Status {
		case HealthStatusOK, "":
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		default:
			return HealthStatusError
		}
	}
	return status
}

// Serving reports whether the API can take quote traffic.
func (r SystemHealthReport) Serving() bool {
	return r.Status == HealthStatusOK || r.Status == HealthStatusDegraded
}
