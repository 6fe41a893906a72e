package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"spendboard/internal/cache"
	"spendboard/internal/dataset"
	applog "spendboard/internal/log"
	"spendboard/internal/metrics"
	"spendboard/internal/middleware/ratelimit"
	"spendboard/internal/middleware/security"
	"spendboard/internal/middleware/trace"
	"spendboard/internal/risk"
	appweb "spendboard/web"
)

// DatasetStore is the part of *dataset.Store the handlers use.
type DatasetStore interface {
	Current(ctx context.Context) (*dataset.Dataset, error)
	Refresh(ctx context.Context) (*dataset.Dataset, error)
	Status() dataset.Status
	Ready() bool
}

// RiskTracker compares the current risk indicators with load history.
type RiskTracker interface {
	Tracking(ctx context.Context, ds *dataset.Dataset) (risk.Tracking, error)
}

// Pinger is a backend the readiness check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the server. Tracker, History, Cache and
// Metrics are optional.
type Deps struct {
	Store          DatasetStore
	Register       *risk.Register
	Tracker        RiskTracker
	History        Pinger
	Cache          cache.Cache[[]byte]
	Metrics        *metrics.Metrics
	Logger         *applog.Logger
	RegionPrefixes []string
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	started   time.Time

	shutdownOnce sync.Once
}

const (
	renderTimeout  = 7 * time.Second
	pingTimeout    = 2 * time.Second
	refreshTimeout = 60 * time.Second
	staticMaxAge   = 3600
)

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		deps:     deps,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		detector: security.NewDetector(),
		started:  time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", s.metricsHandler())

	// UI partials
	mux.Handle("/ui/overview", security.NoStore(s.tab("overview")))
	mux.Handle("/ui/categories", security.NoStore(s.tab("categories")))
	mux.Handle("/ui/suppliers", security.NoStore(s.tab("suppliers")))
	mux.Handle("/ui/risks", security.NoStore(s.tab("risks")))
	mux.Handle("/ui/data", security.NoStore(s.tab("data")))
	mux.Handle("/ui/status", security.NoStore(http.HandlerFunc(s.handleStatus)))
	mux.HandleFunc("/refresh", s.handleRefresh)

	// JSON
	mux.HandleFunc("/api/charts/", s.handleChart)
	mux.HandleFunc("/api/summary", s.handleSummary)

	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, s.observe)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, http.MethodPost)(h)
	h = headers.Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestID)(h)
	h = applog.Middleware(logger)(h)
	h = tracer.Middleware(h)
	h = s.detector.Middleware(h)

	s.Server = http.Server{Addr: addr, Handler: h}
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) metricsHandler() http.Handler {
	if s.deps.Metrics == nil {
		return http.NotFoundHandler()
	}
	return s.deps.Metrics.Handler()
}

func (s *Server) observe(r *http.Request, status int, elapsed time.Duration) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveRequest(routeOf(r.URL.Path), r.Method, status, elapsed)
	}
}

var routes = []string{
	"/", "/healthz", "/readyz", "/metrics", "/refresh", "/api/summary",
	"/ui/overview", "/ui/categories", "/ui/suppliers", "/ui/risks", "/ui/data", "/ui/status",
}

// routeOf maps a request path onto a bounded set of metric labels.
func routeOf(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/charts/"):
		return "/api/charts/{name}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/"
	}
	for _, r := range routes {
		if path == r {
			return r
		}
	}
	return "other"
}
