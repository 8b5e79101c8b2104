package headless

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/foldergraph/pkg/errors"
	"github.com/matzehuels/foldergraph/pkg/membership"
	"github.com/matzehuels/foldergraph/pkg/render"
)

// Graph is the node and link set of a view.
type Graph struct {
	Nodes []string // vault-relative paths
	Links []render.Link
}

// wikiLinkRe matches [[target]], [[target|alias]] and [[target#heading]].
var wikiLinkRe = regexp.MustCompile(`\[\[([^\]|#^]+)(?:[#^][^\]|]*)?(?:\|[^\]]*)?\]\]`)

// LoadVault reads every visible file below root as a node and resolves the
// wikilinks of Markdown files. A link target is matched by vault path first,
// with or without the .md extension, then by file name. Unresolved links and
// links to self are dropped.
func LoadVault(ctx context.Context, root string) (*Graph, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "vault %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "vault %s is not a directory", root)
	}

	g := &Graph{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if membership.Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		g.Nodes = append(g.Nodes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(g.Nodes)

	r := newResolver(g.Nodes)
	seen := make(map[render.Link]bool)
	for _, from := range g.Nodes {
		if !strings.EqualFold(path.Ext(from), ".md") {
			continue
		}
		targets, err := readLinks(filepath.Join(root, filepath.FromSlash(from)))
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			to, ok := r.resolve(t)
			if !ok || to == from {
				continue
			}
			l := render.Link{From: from, To: to}
			if seen[l] {
				continue
			}
			seen[l] = true
			g.Links = append(g.Links, l)
		}
	}
	return g, nil
}

func readLinks(p string) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", p)
	}
	defer f.Close()

	var targets []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, m := range wikiLinkRe.FindAllStringSubmatch(sc.Text(), -1) {
			targets = append(targets, strings.TrimSpace(m[1]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", p)
	}
	return targets, nil
}

type resolver struct {
	paths  map[string]bool
	byName map[string]string
}

// newResolver indexes nodes, which must be sorted, so the first path wins
// when two files share a name.
func newResolver(nodes []string) resolver {
	r := resolver{paths: make(map[string]bool), byName: make(map[string]string)}
	for _, n := range nodes {
		r.paths[n] = true
		name := strings.TrimSuffix(path.Base(n), ".md")
		if _, ok := r.byName[name]; !ok {
			r.byName[name] = n
		}
	}
	return r
}

func (r resolver) resolve(target string) (string, bool) {
	for _, c := range []string{target, target + ".md"} {
		if r.paths[c] {
			return c, true
		}
	}
	name := strings.TrimSuffix(path.Base(target), ".md")
	p, ok := r.byName[name]
	return p, ok
}
