package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/prereqtree/pkg/buildinfo"
	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/pipeline"
	"github.com/matzehuels/prereqtree/pkg/render"
	"github.com/matzehuels/prereqtree/pkg/render/nodelink"
	"github.com/matzehuels/prereqtree/pkg/tree"
	"github.com/matzehuels/prereqtree/pkg/view"
)

// viewResponse is returned by POST /views and GET /views/{id}.
type viewResponse struct {
	ID uuid.UUID `json:"id"`
	render.Document
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatNodelink: "image/svg+xml",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatPDF:      "application/pdf",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "views": s.Len(), "version": buildinfo.Version})
}

// createView handles POST /views. The body is a prerequisite payload; the
// optional depth and collapse query parameters fold the tree before the
// first render. The response carries the first cycle and its end frame.
func (s *Server) createView(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	shape, err := shapeFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	shape.Payload = data
	t, _, err := pipeline.Parse(r.Context(), nil, shape)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := pipeline.Shape(t, shape); err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := view.New(r.Context(), t, s.opts.View)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.add(v)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tr := v.Transition()
	doc := render.TransitionDocument(tr, render.WithJSONCanvas(s.opts.Canvas))
	end := tr.Sample(tr.Duration)
	doc.Frame = &end
	s.logger.Info("created view", "id", id, "nodes", t.Len(), "visible", len(end.Glyphs))
	writeJSON(w, http.StatusCreated, viewResponse{ID: id, Document: doc})
}

// getView handles GET /views/{id} with the frame the current cycle settles
// on. Reading a view only advances it by wall-clock time.
func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	id, e, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.Lock()
	e.advance()
	f := e.view.Target()
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, viewResponse{ID: id, Document: render.FrameDocument(f, render.WithJSONCanvas(s.opts.Canvas))})
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.remove(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleNode handles POST /views/{id}/nodes/{node}/toggle. The cycle in
// flight, if any, is first advanced by the wall-clock time since it began
// so the new cycle starts from what the client is showing.
func (s *Server) toggleNode(w http.ResponseWriter, r *http.Request) {
	id, e, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	node, err := strconv.Atoi(chi.URLParam(r, "node"))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeUnknownNode, err, "node %q", chi.URLParam(r, "node")))
		return
	}

	e.mu.Lock()
	e.advance()
	diff, err := e.view.Activate(r.Context(), tree.NodeID(node))
	tr := e.view.Transition()
	e.mu.Unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Debug("toggled node", "view", id, "node", node, "diff", diff.String())
	writeJSON(w, http.StatusOK, render.TransitionDocument(tr,
		render.WithJSONCanvas(s.opts.Canvas), render.WithJSONDiff(diff)))
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	id, e, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	start := time.Now()
	e.mu.Lock()
	e.advance()
	f := e.view.Target()
	e.mu.Unlock()
	svg := render.SVG(f,
		render.WithCanvas(s.opts.Canvas),
		render.WithToggleURL("/views/"+id.String()+"/nodes/"),
		render.WithTags(s.opts.Tags))
	s.rendered(r, pipeline.FormatSVG, start, nil)
	writeBytes(w, contentTypes[pipeline.FormatSVG], svg)
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	start := time.Now()
	e.mu.Lock()
	dot, err := nodelink.ToDOT(e.view.Tree(), nodelink.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
	e.mu.Unlock()
	s.rendered(r, pipeline.FormatDOT, start, err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBytes(w, contentTypes[pipeline.FormatDOT], []byte(dot))
}

// renderPayload handles POST /render?format=svg: a one-shot render of the
// body through the cached pipeline, without creating a view.
func (s *Server) renderPayload(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := shapeFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Payload = data
	opts.Formats = []string{format}
	opts.Layout = s.opts.View.Layout
	opts.Canvas = s.opts.Canvas
	opts.Tags = s.opts.Tags
	opts.Detailed = r.URL.Query().Get("detailed") == "true"

	res, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeBytes(w, contentTypes[format], res.Artifacts[format])
}

// advance moves the view forward by the wall-clock time since the last
// request. Callers hold e.mu.
func (e *entry) advance() {
	now := time.Now()
	if !e.clock.IsZero() {
		e.view.Tick(now.Sub(e.clock))
	}
	e.clock = now
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxPayload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}

// shapeFromQuery reads ?depth=N&collapse=1,2,3.
func shapeFromQuery(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	q := r.URL.Query()
	if d := q.Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative integer, got %q", d)
		}
		opts.Depth = n
	}
	if c := q.Get("collapse"); c != "" {
		for _, part := range strings.Split(c, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "collapse ids must be integers, got %q", part)
			}
			opts.Collapse = append(opts.Collapse, n)
		}
	}
	return opts, nil
}

// statusFor maps an error's kind to an HTTP status.
func statusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindInput:
		return http.StatusBadRequest
	case errors.KindMissing:
		return http.StatusNotFound
	case errors.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
