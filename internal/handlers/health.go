package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/platform/httpx"
	"github.com/sash-studio/api/internal/services"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	system services.SystemService
	build  services.BuildInfo
	clock  func() time.Time
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthSystemService sets the service used by /readyz and as the build info source.
func WithHealthSystemService(svc services.SystemService) HealthOption {
	return func(h *HealthHandlers) {
		h.system = svc
	}
}

// WithHealthBuildInfo overrides the build metadata reported by /healthz.
func WithHealthBuildInfo(info services.BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock overrides the clock, for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHealthHandlers builds the probe handlers.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.build == (services.BuildInfo{}) && h.system != nil {
		h.build = h.system.BuildInfo()
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.clock()
	}
	return h
}

type healthzResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	CommitSHA   string `json:"commitSha,omitempty"`
	Environment string `json:"environment,omitempty"`
	Uptime      string `json:"uptime"`
	Timestamp   string `json:"timestamp"`
}

type readyzResponse struct {
	Status      string                       `json:"status"`
	Version     string                       `json:"version,omitempty"`
	CommitSHA   string                       `json:"commitSha,omitempty"`
	Environment string                       `json:"environment,omitempty"`
	Uptime      string                       `json:"uptime,omitempty"`
	GeneratedAt string                       `json:"generatedAt"`
	Checks      map[string]readyCheckPayload `json:"checks"`
	Details     []string                     `json:"details,omitempty"`
}

type readyCheckPayload struct {
	Status    string  `json:"status"`
	Optional  bool    `json:"optional,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	Error     string  `json:"error,omitempty"`
	LatencyMS float64 `json:"latencyMs"`
	CheckedAt string  `json:"checkedAt,omitempty"`
}

// Healthz reports liveness. It never touches dependencies.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	httpx.WriteJSON(r.Context(), w, http.StatusOK, healthzResponse{
		Status:      domain.HealthStatusOK,
		Version:     h.build.Version,
		CommitSHA:   h.build.CommitSHA,
		Environment: h.build.Environment,
		Uptime:      now.Sub(h.build.StartedAt).Round(time.Second).String(),
		Timestamp:   now.Format(time.RFC3339),
	})
}

// Readyz runs the dependency checks. It answers 503 only when a required dependency
// fails; optional failures are reported with a degraded status and 200.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_unavailable", "readiness checks are not configured", http.StatusServiceUnavailable))
		return
	}

	report, err := h.system.HealthReport(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_unavailable", "readiness checks failed to run", http.StatusServiceUnavailable))
		return
	}

	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = h.clock()
	}
	payload := readyzResponse{
		Status:      report.Status,
		Version:     report.Version,
		CommitSHA:   report.CommitSHA,
		Environment: report.Environment,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Checks:      make(map[string]readyCheckPayload, len(report.Checks)),
	}
	if report.Uptime > 0 {
		payload.Uptime = report.Uptime.Round(time.Second).String()
	}

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := report.Checks[name]
		entry := readyCheckPayload{
			Status:    check.Status,
			Optional:  check.Optional,
			Detail:    check.Detail,
			Error:     check.Error,
			LatencyMS: float64(check.Latency) / float64(time.Millisecond),
		}
		if !check.CheckedAt.IsZero() {
			entry.CheckedAt = check.CheckedAt.UTC().Format(time.RFC3339)
		}
		payload.Checks[name] = entry
		if check.Status != domain.HealthStatusOK && check.Error != "" {
			payload.Details = append(payload.Details, fmt.Sprintf("%s: %s", name, check.Error))
		}
	}

	status := http.StatusOK
	if !report.Serving() {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(r.Context(), w, status, payload)
}
