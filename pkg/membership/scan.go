package membership

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/foldergraph/pkg/errors"
)

// Hidden reports whether a file or folder name is hidden from the vault,
// like .obsidian or .git.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Scan walks the vault at root and records every visible file and folder in
// idx, the way the host reports them when a vault is opened. Paths are
// relative to root and slash separated. Hidden entries and everything below
// them are skipped.
func Scan(ctx context.Context, root string, idx *Index) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "vault %s", root)
		}
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "vault %s", root)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "vault %s is not a directory", root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		leaf, err := LeafAt(root, p)
		if err != nil {
			return err
		}
		idx.RecordLeaf(leaf)
		return nil
	})
}

// LeafAt describes the file or folder at p, which must lie inside root.
func LeafAt(root, p string) (Leaf, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return Leaf{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "%s is outside %s", p, root)
	}
	rel = filepath.ToSlash(rel)
	if err := errors.ValidatePath(rel); err != nil {
		return Leaf{}, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return Leaf{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", rel)
	}

	leaf := Leaf{Path: rel, Parent: parentOf(rel), Folder: info.IsDir()}
	if leaf.Folder {
		entries, err := os.ReadDir(p)
		if err != nil {
			return Leaf{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", rel)
		}
		for _, e := range entries {
			if !Hidden(e.Name()) {
				leaf.Children++
			}
		}
	}
	return leaf, nil
}

func parentOf(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return RootPath
	}
	return dir
}
