package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ledgerview/internal/dashboard"
	"ledgerview/internal/log"
	"ledgerview/internal/middleware/ratelimit"
	"ledgerview/internal/middleware/security"
	"ledgerview/internal/middleware/trace"
	"ledgerview/internal/render"
	"ledgerview/internal/session"
)

// Pinger checks that the upstream ledger answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to the rest of the application.
type Options struct {
	Controller *dashboard.Controller
	Sessions   *session.Store
	Renderer   *render.Renderer
	Ledger     Pinger
	Static     fs.FS

	Chips           []render.Chip
	UserEndpoint    string
	InitialEndpoint string

	RateLimitPerMinute int
	Logger             *log.Logger
}

type appMetrics struct {
	uptime      time.Time
	loads       atomic.Int64
	failures    atomic.Int64
	rejected    atomic.Int64
	notFound    atomic.Int64
	staleDrops  atomic.Int64
	renderError atomic.Int64
}

// Server is the dashboard HTTP server.
type Server struct {
	http.Server

	controller *dashboard.Controller
	sessions   *session.Store
	renderer   *render.Renderer
	ledger     Pinger
	page       render.PageData

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger
	metrics *appMetrics
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Controller == nil || opts.Sessions == nil || opts.Renderer == nil {
		return nil, errors.New("http server: controller, sessions and renderer are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		controller: opts.Controller,
		sessions:   opts.Sessions,
		renderer:   opts.Renderer,
		ledger:     opts.Ledger,
		page: render.PageData{
			Chips:           opts.Chips,
			UserEndpoint:    opts.UserEndpoint,
			InitialEndpoint: opts.InitialEndpoint,
		},
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(logger, extractClientIP),
		logger:  logger.WithComponent(log.ComponentHTTP),
		metrics: &appMetrics{uptime: time.Now()},
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts.Static),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(static fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if static != nil {
		files := http.StripPrefix("/static/", http.FileServerFS(static))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", files)
	}

	r.Route("/ui", func(r chi.Router) {
		r.Use(s.limiter.Middleware(extractClientIP, s.handleRateLimited))
		r.Use(security.NoStore)

		r.Get("/load", s.handleLoad)
		r.Get("/range", s.handleRange)
		r.Get("/user", s.handleUser)
		r.Get("/export.txt", s.handleExportText)
		r.Get("/export.csv", s.handleExportCSV)
	})

	return r
}

// RunJanitor runs the rate limiter cleanup until ctx is done.
func (s *Server) RunJanitor(ctx context.Context) error {
	err := s.limiter.Run(ctx)
	s.logger.Debug("Rate limiter janitor stopped", log.FieldOperation, log.OpShutdown)
	return err
}
