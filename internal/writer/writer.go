// Package writer puts planned documents on disk. The pipeline itself
// never touches the filesystem; it hands this package the unit manifest
// and the sidebar content. Write failures are fatal and always name the
// failing path.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/oxidoc/oxidoc/internal/emit"
)

// maxConcurrentWrites bounds parallel file writes. Documentation trees
// run to thousands of small files; unbounded goroutines just exhaust
// file descriptors.
const maxConcurrentWrites = 16

// Write creates every unit's parent directory and writes its body.
// Directories are created up front, sequentially, so concurrent writers
// never race on MkdirAll.
func Write(ctx context.Context, units []emit.Unit) error {
	dirs := make(map[string]bool)
	for _, u := range units {
		dirs[filepath.Dir(u.Path)] = true
	}
	for dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := os.WriteFile(u.Path, []byte(u.Body), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", u.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteSidebar writes the serialized navigation module.
func WriteSidebar(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating sidebar directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing sidebar %s: %w", path, err)
	}
	return nil
}
