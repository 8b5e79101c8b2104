package headless

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/render"
)

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoadVault(t *testing.T) {
	root := writeVault(t, map[string]string{
		"a/x.md":             "See [[y]] and [[b/z|the z note]].\nAlso [[missing]] and [[x]].\n[[y]] again.",
		"a/y.md":             "",
		"b/z.md":             "",
		"top.md":             "Start at [[a/x.md#intro]].",
		"image.png":          "\x89PNG",
		".obsidian/app.json": "{}",
	})

	g, err := LoadVault(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadVault() error = %v", err)
	}

	wantNodes := []string{"a/x.md", "a/y.md", "b/z.md", "image.png", "top.md"}
	if diff := cmp.Diff(wantNodes, g.Nodes); diff != "" {
		t.Errorf("Nodes mismatch (-want +got):\n%s", diff)
	}
	wantLinks := []render.Link{
		{From: "a/x.md", To: "a/y.md"},
		{From: "a/x.md", To: "b/z.md"},
		{From: "top.md", To: "a/x.md"},
	}
	if diff := cmp.Diff(wantLinks, g.Links); diff != "" {
		t.Errorf("Links mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadVaultErrors(t *testing.T) {
	root := writeVault(t, map[string]string{"n.md": ""})

	if _, err := LoadVault(context.Background(), filepath.Join(root, "nope")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadVault(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := LoadVault(context.Background(), filepath.Join(root, "n.md")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("LoadVault(file) error = %v, want INVALID_PATH", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadVault(ctx, root); err != context.Canceled {
		t.Errorf("LoadVault(canceled) error = %v, want %v", err, context.Canceled)
	}
}

func TestResolve(t *testing.T) {
	r := newResolver([]string{"a/note.md", "b/note.md", "c/pic.png", "d.md"})
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"a/note.md", "a/note.md", true},
		{"b/note", "b/note.md", true},
		{"note", "a/note.md", true},
		{"d", "d.md", true},
		{"c/pic.png", "c/pic.png", true},
		{"pic.png", "c/pic.png", true},
		{"nothing", "", false},
	}
	for _, tt := range tests {
		got, ok := r.resolve(tt.target)
		if got != tt.want || ok != tt.ok {
			t.Errorf("resolve(%q) = %q, %v, want %q, %v", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}
