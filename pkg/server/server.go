// Package server exposes interactive prerequisite views over HTTP.
//
// Each POST /views builds a [view.View] from the request body and keeps it
// in memory under a random UUID. Clients toggle nodes and receive the diff
// plus the whole transition, which they sample with their own clock; the
// server also draws settled SVG and DOT pictures. Nothing is persisted.
//
// Views are not safe for concurrent use, so every view carries its own
// lock. The registry of views has a separate lock that is never held while
// a view is being driven.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/pipeline"
	"github.com/matzehuels/prereqtree/pkg/render"
	"github.com/matzehuels/prereqtree/pkg/view"
)

const (
	// DefaultMaxViews bounds the number of live views.
	DefaultMaxViews = 1024

	// DefaultMaxPayload bounds a request body.
	DefaultMaxPayload = 4 << 20
)

// Options configures a Server.
type Options struct {
	View   view.Options
	Canvas render.Canvas

	// Runner serves POST /render. A nil runner renders without caching.
	Runner *pipeline.Runner

	// Tags decorate SVG tooltips, keyed by node label.
	Tags map[string][]string

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Logger     *log.Logger
	MaxViews   int
	MaxPayload int64
}

// DefaultOptions returns options for an in-memory server with default
// layout, animation and canvas.
func DefaultOptions() Options {
	canvas := render.DefaultCanvas()
	vo := view.DefaultOptions()
	vo.Animation.InitialAnchor = canvas.InitialAnchor()
	return Options{
		View:       vo,
		Canvas:     canvas,
		MaxViews:   DefaultMaxViews,
		MaxPayload: DefaultMaxPayload,
	}
}

// Server holds live views and serves them over HTTP.
type Server struct {
	opts   Options
	logger *log.Logger

	mu    sync.RWMutex
	views map[uuid.UUID]*entry
}

type entry struct {
	mu    sync.Mutex
	view  *view.View
	clock time.Time    // when the view was last advanced, guarded by mu
	used  atomic.Int64 // unix nanos of the last request
}

func (e *entry) touch() { e.used.Store(time.Now().UnixNano()) }

// New returns a server with no views.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.MaxViews <= 0 {
		opts.MaxViews = DefaultMaxViews
	}
	if opts.MaxPayload <= 0 {
		opts.MaxPayload = DefaultMaxPayload
	}
	if opts.Canvas == (render.Canvas{}) {
		opts.Canvas = render.DefaultCanvas()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	opts.View.Logger = opts.Logger
	return &Server{
		opts:   opts,
		logger: opts.Logger,
		views:  make(map[uuid.UUID]*entry),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Post("/render", s.renderPayload)

	r.Route("/views", func(r chi.Router) {
		r.Post("/", s.createView)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getView)
			r.Delete("/", s.deleteView)
			r.Get("/svg", s.getSVG)
			r.Get("/dot", s.getDOT)
			r.Post("/nodes/{node}/toggle", s.toggleNode)
		})
	})
	return r
}

// Len returns the number of live views.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

func (s *Server) add(v *view.View) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) >= s.opts.MaxViews {
		return uuid.Nil, errors.New(errors.ErrCodeUnsupported, "too many live views (max %d)", s.opts.MaxViews)
	}
	id := uuid.New()
	e := &entry{view: v, clock: time.Now()}
	e.touch()
	s.views[id] = e
	return id, nil
}

func (s *Server) lookup(raw string) (uuid.UUID, *entry, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, errors.Wrap(errors.ErrCodeViewNotFound, err, "view %q", raw)
	}
	s.mu.RLock()
	e, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return uuid.Nil, nil, errors.New(errors.ErrCodeViewNotFound, "view %s", id)
	}
	e.touch()
	return id, e, nil
}

func (s *Server) remove(raw string) error {
	id, _, err := s.lookup(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
	return nil
}

// Prune drops views idle for longer than maxAge and returns how many it
// dropped.
func (s *Server) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.views {
		if e.used.Load() < cutoff {
			delete(s.views, id)
			n++
		}
	}
	return n
}

// RunPruner calls Prune every interval until ctx is done.
func (s *Server) RunPruner(ctx context.Context, interval, maxAge time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Prune(maxAge); n > 0 {
				s.logger.Info("pruned views", "count", n, "live", s.Len())
			}
		}
	}
}
