// Package server exposes a concept map over HTTP.
//
// Every route answers with JSON except the rendered map (/graph.dot,
// /graph.svg) and /metrics. Errors are reported as
//
//	{"code": "NOT_FOUND", "error": "no concept named \"limits\""}
//
// with the status derived from the code.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/conceptmap/internal/metrics"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
	"github.com/matzehuels/conceptmap/pkg/userdata"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Options configures a [Server]. Only Graph is required.
type Options struct {
	Graph *concept.Graph

	// Cache backs user states and rendered SVG. With a nil Cache nothing
	// is stored, so user lookups always report NOT_FOUND.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	// Metrics enables /metrics. The caller installs its hooks.
	Metrics *metrics.Metrics

	Logger *log.Logger

	// AllowedOrigins lists the browser origins allowed to call the API.
	// Empty allows any origin.
	AllowedOrigins []string
}

// Server serves one concept map. The map can be swapped while serving.
type Server struct {
	graph    atomic.Pointer[concept.Graph]
	origins  []string
	users    *userdata.Store
	renderer *nodelink.Renderer
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// New returns a server for opts.Graph.
func New(opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		origins:  opts.AllowedOrigins,
		users:    userdata.NewStore(c, opts.Keyer, userdata.DefaultTTL),
		renderer: nodelink.NewRenderer(c, opts.Keyer, opts.CacheTTL),
		metrics:  opts.Metrics,
		logger:   logger,
	}
	s.SetGraph(opts.Graph)
	return s
}

// Graph returns the map being served.
func (s *Server) Graph() *concept.Graph { return s.graph.Load() }

// SetGraph replaces the served map. Requests in flight finish on the map
// they started with.
func (s *Server) SetGraph(g *concept.Graph) {
	s.graph.Store(g)
	if s.metrics != nil {
		s.metrics.NodeCount.Set(float64(g.Len()))
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(instrument)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/graph.dot", s.graphDOT)
	r.Get("/graph.svg", s.graphSVG)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.listNodes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getNode)
			r.Get("/ancestors", s.ancestors)
			r.Get("/ancestors/{candidate}", s.isAncestor)
			r.Get("/unique", s.unique)
			r.Get("/unique/{dep}", s.isUnique)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.createUser)
		r.Route("/{uid}", func(r chi.Router) {
			r.Get("/", s.getUser)
			r.Delete("/", s.deleteUser)
			r.Put("/learned/{id}", s.setLearned(true))
			r.Delete("/learned/{id}", s.setLearned(false))
			r.Get("/unlearned/{id}", s.unlearned)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr, "nodes", s.Graph().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Debug("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) corsOptions() cors.Options {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Cache"},
		MaxAge:         300,
	}
}
