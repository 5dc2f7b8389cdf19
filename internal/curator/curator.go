// Package curator runs one full curation pass: load the input images,
// fingerprint them under the selected metric, order or group them, and
// apply the result to the filesystem.
package curator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"facesort/internal/changelog"
	"facesort/internal/fingerprint"
	"facesort/internal/loader"
	"facesort/internal/materializer"
	"facesort/internal/metric"
	"facesort/internal/sorter"
)

// FinalProcess selects what happens after sequencing.
type FinalProcess string

const (
	// ProcessRename rewrites filenames so lexical order matches the sequence.
	ProcessRename FinalProcess = "rename"
	// ProcessFolders distributes files into numbered group directories.
	ProcessFolders FinalProcess = "folders"
)

func ParseFinalProcess(s string) (FinalProcess, error) {
	switch FinalProcess(s) {
	case ProcessRename, ProcessFolders:
		return FinalProcess(s), nil
	default:
		return "", fmt.Errorf("unknown final process %q (available: rename, folders)", s)
	}
}

// Options configures one curation run.
type Options struct {
	InputDir     string
	OutputDir    string // empty means in place
	SortBy       string
	GroupBy      string // empty means same as SortBy
	FinalProcess FinalProcess
	NumBins      int
	Threshold    float64 // negative means the metric's default
	KeepOriginal bool
	LogChanges   bool
	LogFile      string // empty means <input>/sort_log.json
	Workers      int
}

// Curator executes curation runs against a metric registry.
type Curator struct {
	registry *metric.Registry
	logger   *slog.Logger
	progress io.Writer
}

func New(registry *metric.Registry, logger *slog.Logger) *Curator {
	return &Curator{
		registry: registry,
		logger:   logger,
		progress: os.Stdout,
	}
}

// SetProgressWriter redirects progress bar output, mainly for tests.
func (c *Curator) SetProgressWriter(w io.Writer) {
	c.progress = w
}

// Run executes one curation pass. Configuration errors and fingerprinting
// failures abort before any file moves; failures while applying the result
// are logged per file and do not roll back files already in place.
func (c *Curator) Run(ctx context.Context, opts Options) error {
	sortDesc, err := c.registry.Lookup(opts.SortBy)
	if err != nil {
		return err
	}
	groupBy := opts.GroupBy
	if groupBy == "" {
		groupBy = opts.SortBy
	}
	groupDesc, err := c.registry.Lookup(groupBy)
	if err != nil {
		return err
	}
	if opts.FinalProcess != ProcessRename && opts.FinalProcess != ProcessFolders {
		return fmt.Errorf("unknown final process %q (available: rename, folders)", opts.FinalProcess)
	}
	if opts.FinalProcess == ProcessFolders && opts.NumBins < 1 {
		return fmt.Errorf("number of bins must be at least 1, got %d", opts.NumBins)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = opts.InputDir
	}

	files, err := loader.Load(ctx, opts.InputDir, opts.Workers)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		c.logger.Warn("no images found", "dir", opts.InputDir)
		return nil
	}
	c.logger.Info("loaded images", "count", len(files), "sort-by", sortDesc.ID, "group-by", groupDesc.ID)

	items, err := c.score(ctx, sortDesc, files, opts.Workers, "Fingerprinting")
	if err != nil {
		return err
	}
	// raw image bytes are no longer needed once fingerprints exist
	for i := range files {
		files[i].Data = nil
	}

	seq, err := c.sequence(sortDesc, items)
	if err != nil {
		return err
	}

	var changes *changelog.Log
	if opts.LogChanges {
		changes = changelog.New()
	}
	mat := materializer.New(outputDir, materializer.Strategy{
		KeepOriginal: opts.KeepOriginal,
		LogChanges:   opts.LogChanges,
	}, changes, c.logger)
	mat.SetProgressWriter(c.progress)

	switch opts.FinalProcess {
	case ProcessRename:
		if err := mat.RenameSequence(seq); err != nil {
			return err
		}
	case ProcessFolders:
		if groupDesc.ID != sortDesc.ID {
			seq, err = c.refingerprint(ctx, groupDesc, seq, opts)
			if err != nil {
				return err
			}
		}
		bins, err := c.group(groupDesc, seq, opts)
		if err != nil {
			return err
		}
		c.logger.Info("grouped images", "bins", len(bins))
		if err := mat.PlaceIntoFolders(bins); err != nil {
			return err
		}
	}

	if opts.LogChanges {
		logFile := opts.LogFile
		if logFile == "" {
			logFile = filepath.Join(opts.InputDir, "sort_log.json")
		}
		if err := changes.Save(logFile); err != nil {
			return err
		}
		c.logger.Info("wrote change log", "path", logFile, "entries", changes.Len())
	}
	return nil
}

// score fingerprints every file under the given metric, preserving input
// order. The first scorer failure aborts the whole run.
func (c *Curator) score(ctx context.Context, desc metric.Descriptor, files []loader.ImageFile, workers int, description string) ([]sorter.Item, error) {
	if workers <= 0 {
		workers = 8
	}

	bar := c.newBar(len(files), description)
	items := make([]sorter.Item, len(files))
	var mu sync.Mutex
	var firstErr error
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, file := range files {
		i, file := i, file
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			print, err := c.registry.Score(ctx, desc, file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to fingerprint %s: %w", file.Path, err)
				}
				return
			}
			items[i] = sorter.Item{Path: file.Path, Print: print}
			_ = bar.Add(1)
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (c *Curator) sequence(desc metric.Descriptor, items []sorter.Item) (sorter.SequencedList, error) {
	switch desc.Order {
	case sorter.OrderScalar:
		return sorter.SortScalar(items, desc.Direction), nil
	case sorter.OrderChain:
		return sorter.ChainSort(items, desc.Compare)
	case sorter.OrderDissimilarity:
		return sorter.SortByTotalDissimilarity(items, desc.Compare)
	default:
		return nil, fmt.Errorf("metric %s has no sequencing policy", desc.ID)
	}
}

// refingerprint rescores the already sequenced files under the grouping
// metric, keeping the sequence order. It re-reads the input directory, so it
// must run before any file moves.
func (c *Curator) refingerprint(ctx context.Context, desc metric.Descriptor, seq sorter.SequencedList, opts Options) (sorter.SequencedList, error) {
	c.logger.Info("grouping metric differs from sorting metric, re-fingerprinting", "metric", desc.ID)

	files, err := loader.Load(ctx, opts.InputDir, opts.Workers)
	if err != nil {
		return nil, err
	}
	items, err := c.score(ctx, desc, files, opts.Workers, "Re-fingerprinting")
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]fingerprint.Fingerprint, len(items))
	for _, item := range items {
		byPath[item.Path] = item.Print
	}

	out := make(sorter.SequencedList, len(seq))
	for i, item := range seq {
		print, ok := byPath[item.Path]
		if !ok {
			return nil, fmt.Errorf("file %s disappeared between passes", item.Path)
		}
		out[i] = sorter.Item{Path: item.Path, Print: print}
	}
	return out, nil
}

func (c *Curator) group(desc metric.Descriptor, seq sorter.SequencedList, opts Options) (sorter.Bins, error) {
	switch desc.Group {
	case sorter.GroupEqualSplit:
		return sorter.EqualSplit(seq, opts.NumBins), nil
	case sorter.GroupThresholdEdge:
		return sorter.ThresholdEdgeSplit(seq, opts.NumBins), nil
	case sorter.GroupCluster:
		threshold := opts.Threshold
		if threshold < 0 {
			threshold = desc.DefaultThreshold
		}
		return sorter.Cluster(seq, desc.Compare, desc.ScaledThreshold(threshold)), nil
	default:
		return nil, fmt.Errorf("metric %s has no grouping policy", desc.ID)
	}
}

func (c *Curator) newBar(count int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
