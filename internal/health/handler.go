// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 3 * time.Second

// Phase is where the process is in its lifecycle. Only PhaseServing
// accepts traffic.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseServing
	PhaseDraining
)

func (p Phase) String() string {
	switch p {
	case PhaseServing:
		return "serving"
	case PhaseDraining:
		return "draining"
	default:
		return "starting"
	}
}

type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a plain function, such as an upload directory probe.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type dependency struct {
	name  string
	check Checker
}

type Handler struct {
	deps  []dependency
	phase atomic.Int32
}

// NewHandler starts in PhaseStarting; the caller moves to PhaseServing
// once migrations and the seed pass are done.
func NewHandler(db, redis Checker) *Handler {
	return &Handler{deps: []dependency{
		{name: "database", check: db},
		{name: "redis", check: redis},
	}}
}

// AddCheck registers an extra readiness dependency.
func (h *Handler) AddCheck(name string, c Checker) {
	h.deps = append(h.deps, dependency{name: name, check: c})
}

func (h *Handler) Phase() Phase {
	return Phase(h.phase.Load())
}

// SetReady moves between starting and serving. It never revives a
// draining process.
func (h *Handler) SetReady(ready bool) {
	from, to := PhaseStarting, PhaseServing
	if !ready {
		from, to = PhaseServing, PhaseStarting
	}
	h.phase.CompareAndSwap(int32(from), int32(to))
}

// SetShutdown marks the process as draining so load balancers stop
// routing to it before the listener closes.
func (h *Handler) SetShutdown(draining bool) {
	if draining {
		h.phase.Store(int32(PhaseDraining))
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Liveness only fails while draining; a slow database is not a reason
// to restart the process.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	phase := h.Phase()
	if phase == PhaseDraining {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: phase.String()})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if phase := h.Phase(); phase != PhaseServing {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: phase.String()})
		return
	}

	checks := h.probe(r.Context())
	resp := ReadinessResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			resp.Status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

// probe pings every dependency concurrently. Failures are reported per
// dependency rather than aborting the group.
func (h *Handler) probe(ctx context.Context) []HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out := make([]HealthCheck, len(h.deps))
	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			out[i] = ping(ctx, dep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors
	return out
}

func ping(ctx context.Context, dep dependency) HealthCheck {
	hc := HealthCheck{Name: dep.name}
	if dep.check == nil {
		hc.Message = "not configured"
		return hc
	}

	start := time.Now()
	err := dep.check.Ping(ctx)
	hc.Latency = time.Since(start).Round(time.Microsecond).String()
	if err != nil {
		hc.Message = "unreachable"
		return hc
	}
	hc.Healthy = true
	return hc
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // best-effort
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
