package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnLoad(ctx, 4, time.Millisecond, nil)
	h.OnLoad(ctx, 0, time.Millisecond, errors.New("bad payload"))
	h.OnToggle(ctx, 3, true, nil)
	h.OnToggle(ctx, 3, false, nil)
	h.OnToggle(ctx, 3, true, nil)
	h.OnLayout(ctx, 7, time.Millisecond, nil)
	h.OnTransition(ctx, 1, 3, 2)
	h.OnCacheHit(ctx, "payload")
	h.OnCacheSet(ctx, "payload", 512)
	h.OnResponse(ctx, "GET", "api.example.edu", "/tree", 200, time.Second)
	h.OnError(ctx, "GET", "api.example.edu", "/tree", errors.New("timeout"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"loads ok", testutil.ToFloat64(h.loads.WithLabelValues("ok")), 1},
		{"loads error", testutil.ToFloat64(h.loads.WithLabelValues("error")), 1},
		{"collapsed toggles", testutil.ToFloat64(h.toggles.WithLabelValues("collapsed")), 2},
		{"expanded toggles", testutil.ToFloat64(h.toggles.WithLabelValues("expanded")), 1},
		{"visible", testutil.ToFloat64(h.visible), 7},
		{"exit nodes", testutil.ToFloat64(h.transitions.WithLabelValues("exit")), 2},
		{"cache hits", testutil.ToFloat64(h.cacheOps.WithLabelValues("payload", "hit")), 1},
		{"cache bytes", testutil.ToFloat64(h.cacheBytes), 512},
		{"http 200", testutil.ToFloat64(h.httpReqs.WithLabelValues("api.example.edu", "200")), 1},
		{"http errors", testutil.ToFloat64(h.httpReqs.WithLabelValues("api.example.edu", "error")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPrometheusHooksDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering twice should panic")
		}
	}()
	NewPrometheusHooks(reg)
}
