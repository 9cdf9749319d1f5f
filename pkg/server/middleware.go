package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/prereqtree/pkg/observability"
)

const hookHost = "server"

// instrument reports every served request to the HTTP hooks, labelled by
// route pattern rather than raw path so view ids do not explode label sets.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, hookHost, route, status, time.Since(start))
	})
}

func (s *Server) rendered(r *http.Request, format string, start time.Time, err error) {
	observability.View().OnRender(r.Context(), format, time.Since(start), err)
}
