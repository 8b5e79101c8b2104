package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/foldergraph/pkg/geom"
	"github.com/matzehuels/foldergraph/pkg/membership"
	"github.com/matzehuels/foldergraph/pkg/observability/prom"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// vaultFixture writes a small vault: two notes in folder a linking to a root
// note, one note in b, and an empty folder.
func vaultFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.md":     "start",
		"a/one.md":     "see [[index]] and [[two]]",
		"a/two.md":     "back to [[a/one|one]]",
		"b/three.md":   "[[index]]",
		".obsidian/ws": "{}",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		want    []geom.Point
		wantErr bool
	}{
		{"single", []string{"1,2"}, []geom.Point{{X: 1, Y: 2}}, false},
		{"negative and spaces", []string{"-1.5, 3", "0,0"}, []geom.Point{{X: -1.5, Y: 3}, {}}, false},
		{"missing comma", []string{"12"}, nil, true},
		{"not a number", []string{"a,b"}, nil, true},
		{"empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePoints(tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoints() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parsePoints() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHullCommand(t *testing.T) {
	out, err := execute(t, "", "hull", "0,0", "10,0", "0,10", "2,2")
	if err != nil {
		t.Fatalf("hull error = %v", err)
	}
	// Bounding box center (5,5); farthest hull point at sqrt(50); padding 30.
	for _, want := range []string{"5, 5", "37.0710678", "137.0710678", "4 points", "3 on hull"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHullCommandStdin(t *testing.T) {
	out, err := execute(t, "0,0\n10,0 0,10\n", "hull", "--padding", "0", "--ccw")
	if err != nil {
		t.Fatalf("hull error = %v", err)
	}
	if !strings.Contains(out, "7.0710678118654") {
		t.Errorf("output missing unpadded radius:\n%s", out)
	}
}

func TestHullCommandConfigPadding(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "foldergraph.toml")
	if err := os.WriteFile(cfgPath, []byte("[forces]\npadding = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "--config", cfgPath, "hull", "3,4")
	if err != nil {
		t.Fatalf("hull error = %v", err)
	}
	if !strings.Contains(out, "12") {
		t.Errorf("single point radius should equal the configured padding:\n%s", out)
	}
}

func TestHullCommandBadInput(t *testing.T) {
	if _, err := execute(t, "", "hull", "1;2"); err == nil {
		t.Error("hull with a malformed point should fail")
	}
}

func TestIndexCommand(t *testing.T) {
	vault := vaultFixture(t)

	out, err := execute(t, "", "index", vault)
	if err != nil {
		t.Fatalf("index error = %v", err)
	}
	for _, want := range []string{"a/one.md", "a/two.md", "b/three.md", "empty"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"index.md", ".obsidian"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output should not list %q:\n%s", unwanted, out)
		}
	}
}

func TestIndexCommandMissingVault(t *testing.T) {
	if _, err := execute(t, "", "index", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("index of a missing vault should fail")
	}
}

func TestSimulateCommand(t *testing.T) {
	vault := vaultFixture(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		file   string
		args   []string
		prefix string
	}{
		{"svg", "out.svg", nil, "<svg"},
		{"dot", "out.dot", []string{"--labels"}, "graph G"},
		{"async svg", "async.svg", []string{"--async", "--polygons"}, "<svg"},
		{"no folders", "plain.svg", []string{"--no-folders"}, "<svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			args := append([]string{"simulate", vault, "--frames", "5", "--fps", "500", "--out", path}, tt.args...)
			if _, err := execute(t, "", args...); err != nil {
				t.Fatalf("simulate error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if !strings.HasPrefix(strings.TrimSpace(string(data)), tt.prefix) {
				t.Errorf("output starts with %.40q, want %q", data, tt.prefix)
			}
		})
	}
}

func TestSimulateCommandUnsupportedOutput(t *testing.T) {
	vault := vaultFixture(t)
	_, err := execute(t, "", "simulate", vault, "--frames", "1", "--out", filepath.Join(t.TempDir(), "out.gif"))
	if err == nil {
		t.Fatal("simulate with a .gif output should fail")
	}
	if !strings.Contains(err.Error(), ".gif") {
		t.Errorf("error = %v, want it to name the extension", err)
	}
}

func TestSimulateCommandInvalidFPS(t *testing.T) {
	vault := vaultFixture(t)
	if _, err := execute(t, "", "simulate", vault, "--frames", "1", "--fps", "0"); err == nil {
		t.Error("simulate with fps 0 should fail validation")
	}
}

func TestLiveServer(t *testing.T) {
	var latest atomic.Pointer[[]byte]
	srv := newLiveServer(":0", prom.New(), &latest)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, liveFramePath, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("frame before first render: status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	svg := []byte("<svg/>")
	latest.Store(&svg)
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, liveFramePath, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg/>" {
		t.Errorf("frame: status = %d body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, defaultMetricsPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "foldergraph_frames_total") {
		t.Errorf("metrics body missing frames counter:\n%s", rec.Body.String())
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"view.svg", "svg", false},
		{"VIEW.PNG", "png", false},
		{"graph.dot", "dot", false},
		{"doc.pdf", "pdf", false},
		{"view", "", true},
		{"view.jpg", "", true},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("outputFormat(%q) = %q, %v; want %q, err %v", tt.path, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, "foldergraph") {
		t.Error("bash completion should mention the command name")
	}
}

func TestPrintLeaf(t *testing.T) {
	tests := []struct {
		leaf membership.Leaf
		want string
	}{
		{membership.Leaf{Path: "a/b.md", Parent: "a"}, "a/b.md → a"},
		{membership.Leaf{Path: "c.md", Parent: membership.RootPath}, "(no folder)"},
		{membership.Leaf{Path: "e", Parent: membership.RootPath, Folder: true}, "e/ (empty)"},
		{membership.Leaf{Path: "a", Parent: membership.RootPath, Folder: true, Children: 2}, "a/"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		printLeaf(&buf, tt.leaf)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("printLeaf(%+v) = %q, want it to contain %q", tt.leaf, buf.String(), tt.want)
		}
	}
}
