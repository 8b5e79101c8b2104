package prom

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHooksRecordMetrics(t *testing.T) {
	ctx := context.Background()
	h := New()

	h.OnFrameComplete(ctx, "s1", 4, 2, time.Millisecond)
	h.OnFrameComplete(ctx, "s1", 5, 1, time.Millisecond)
	h.OnPin(ctx, "s1", "a.md")
	h.OnPin(ctx, "s1", "b.md")
	h.OnUnpin(ctx, "s1", "a.md")
	h.OnInvariantViolation(ctx, "s1", "a.md", errors.New("pinned and released"))
	h.OnClusterFault(ctx, "s1", "notes", errors.New("boom"))
	h.OnLeafRecorded(ctx, "notes/a.md", "notes", false)
	h.OnLeafRecorded(ctx, "empty", "", true)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "frames", got: testutil.ToFloat64(h.frames), want: 2},
		{name: "clusters", got: testutil.ToFloat64(h.clusters), want: 5},
		{name: "forced", got: testutil.ToFloat64(h.forced), want: 1},
		{name: "pins", got: testutil.ToFloat64(h.pins), want: 2},
		{name: "unpins", got: testutil.ToFloat64(h.unpins), want: 1},
		{name: "violations", got: testutil.ToFloat64(h.violations), want: 1},
		{name: "faults", got: testutil.ToFloat64(h.faults.WithLabelValues("notes")), want: 1},
		{name: "file leaves", got: testutil.ToFloat64(h.leaves.WithLabelValues("file")), want: 1},
		{name: "folder leaves", got: testutil.ToFloat64(h.leaves.WithLabelValues("folder")), want: 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	h := New()
	h.OnPin(context.Background(), "s1", "a.md")

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "foldergraph_pins_total 1") {
		t.Errorf("metrics output missing pins counter:\n%s", body)
	}
}
