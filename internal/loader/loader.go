// Package loader enumerates and reads the images of one input directory.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"facesort/internal/imgmeta"
)

// imageExtensions is the case-insensitive allow-list applied during
// enumeration.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageFile is one enumerated image: its path, raw bytes and any alignment
// metadata decoded from the file. Data is released once fingerprinting is
// done; Path stays the item's stable identifier for the rest of the run.
type ImageFile struct {
	Path string
	Data []byte
	Meta *imgmeta.FaceMeta
}

// ListImages returns the image paths of a single directory level, in natural
// enumeration order. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// Load reads every image in dir concurrently, preserving enumeration order
// in the returned slice. workers caps the parallel reads; 0 means one per
// CPU.
func Load(ctx context.Context, dir string, workers int) ([]ImageFile, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files := make([]ImageFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			meta, err := imgmeta.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode metadata of %s: %w", path, err)
			}
			files[i] = ImageFile{Path: path, Data: data, Meta: meta}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
