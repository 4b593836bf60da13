package http

import (
	"context"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"charity/internal/cache"
	"charity/internal/controller"
	"charity/internal/log"
	"charity/internal/middleware/ratelimit"
	"charity/internal/middleware/security"
	"charity/internal/middleware/trace"
	appweb "charity/web"
)

// Options tunes the server. The zero value serves the embedded assets with
// default limits.
type Options struct {
	Logger            *log.Logger
	RequestsPerMinute int // per client, applied to streams and the contact form
	GridCacheSize     int
	GridCacheTTL      time.Duration
	TrustedProxies    []string
	// Templates and Static override the embedded file systems.
	Templates fs.FS
	Static    fs.FS
}

// Server serves the donor pages, their HTMX partials and the event streams.
type Server struct {
	http.Server
	ctrl      *controller.Controller
	templates *template.Template
	logger    *log.Logger

	// rendered grid partials keyed by generation, sort and search
	gridCache    *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics *appMetrics

	// streamCtx is the base context of every request; cancelling it ends
	// open event streams so Shutdown does not wait on them.
	streamCtx    context.Context
	stopStreams  context.CancelFunc
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime           time.Time
	spotlightStreams int64
	counterStreams   int64
	counterFrames    int64
	contactMessages  int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, ctrl *controller.Controller, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.GridCacheSize <= 0 {
		opts.GridCacheSize = 128
	}
	if opts.GridCacheTTL <= 0 {
		opts.GridCacheTTL = 10 * time.Minute
	}
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}
	if opts.Static == nil {
		if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
			opts.Static = sub
		} else {
			logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
		}
	}

	streamCtx, stopStreams := context.WithCancel(context.Background())
	mux := http.NewServeMux()

	s := &Server{
		ctrl:         ctrl,
		logger:       logger.WithComponent(log.ComponentHTTP),
		gridCache:    cache.NewLRUCache[[]byte](opts.GridCacheSize, opts.GridCacheTTL),
		cacheManager: cache.NewManager(logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
			Logger:            logger,
		}),
		securityDetector: security.NewDetector(logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
		streamCtx:        streamCtx,
		stopStreams:      stopStreams,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	s.cacheManager.Register(s.gridCache)
	s.cacheManager.StartCleanup(time.Minute)

	t, err := template.New("").Funcs(templateFuncs(ctrl.Renderer().Format)).ParseFS(opts.Templates, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if opts.Static != nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	}

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").
			TriggerErrorNotification("Too many requests").
			Write(w)
	})
	noStore := security.NoStore

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /donors", s.handleDonors)

	// UI partials
	mux.Handle("GET /ui/podium", noStore(http.HandlerFunc(s.handlePodium)))
	mux.Handle("GET /ui/grid", noStore(http.HandlerFunc(s.handleGrid)))
	mux.Handle("GET /ui/stats", noStore(http.HandlerFunc(s.handleStats)))
	mux.Handle("GET /ui/impact", noStore(http.HandlerFunc(s.handleImpact)))
	mux.Handle("GET /ui/spotlight", noStore(http.HandlerFunc(s.handleSpotlight)))

	// API and streams
	mux.Handle("GET /api/stats", noStore(http.HandlerFunc(s.handleAPIStats)))
	mux.Handle("GET /events/spotlight", limited(noStore(http.HandlerFunc(s.handleSpotlightEvents))))
	mux.Handle("GET /events/counters", limited(noStore(http.HandlerFunc(s.handleCounterEvents))))
	mux.Handle("POST /contact", limited(http.HandlerFunc(s.handleContact)))

	// Operations
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /", s.handleNotFound)

	var handler http.Handler = mux
	handler = s.traceMiddleware.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.streamCtx },
	}
	return s
}

// Shutdown ends open streams, stops background cleanup and then shuts the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.stopStreams()
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close releases background goroutines of a server that was never started.
func (s *Server) Close() error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopStreams()
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		err = s.Server.Close()
	})
	return err
}

func (s *Server) streamsOpen() int64 {
	return atomic.LoadInt64(&s.appMetrics.spotlightStreams) + atomic.LoadInt64(&s.appMetrics.counterStreams)
}
