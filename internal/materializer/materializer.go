// Package materializer applies a computed ordering or grouping to the
// filesystem. Folder mode distributes files into numbered bin directories;
// rename mode rewrites filenames in place so lexical order matches the
// computed sequence.
package materializer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"facesort/internal/changelog"
	"facesort/internal/sorter"
)

// Strategy controls how each file reaches its destination and whether the
// move is recorded in the change log.
type Strategy struct {
	KeepOriginal bool // copy instead of moving, leaving sources untouched
	LogChanges   bool // record every applied source -> destination pair
}

// Materializer writes sequencing and grouping results to disk.
type Materializer struct {
	outputDir string
	strategy  Strategy
	changes   *changelog.Log
	logger    *slog.Logger
	progress  io.Writer
}

func New(outputDir string, strategy Strategy, changes *changelog.Log, logger *slog.Logger) *Materializer {
	return &Materializer{
		outputDir: outputDir,
		strategy:  strategy,
		changes:   changes,
		logger:    logger,
		progress:  os.Stdout,
	}
}

// SetProgressWriter redirects progress bar output, mainly for tests.
func (m *Materializer) SetProgressWriter(w io.Writer) {
	m.progress = w
}

// PlaceIntoFolders moves every binned file into a directory named after its
// bin index. All bin directories are created up front, so empty bins still
// appear in the output. A missing source file is logged and skipped; it does
// not abort the remaining files.
func (m *Materializer) PlaceIntoFolders(bins sorter.Bins) error {
	total := 0
	for i := range bins {
		dir := filepath.Join(m.outputDir, fmt.Sprintf("%d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create bin directory: %w", err)
		}
		total += len(bins[i])
	}

	bar := m.newBar(total, "Moving into folders")
	for i, bin := range bins {
		dir := filepath.Join(m.outputDir, fmt.Sprintf("%d", i))
		for _, item := range bin {
			dst := filepath.Join(dir, filepath.Base(item.Path))
			if err := m.materializeOne(item.Path, dst, m.strategy); err != nil {
				m.logger.Error("failed to place file", "source", item.Path, "bin", i, "error", err)
			}
			_ = bar.Add(1)
		}
	}
	return nil
}

// RenameSequence renames the sequenced files so that their lexical order
// matches the sequence. It runs in two phases: every file first moves to a
// scratch name carrying both its sequence index and its original basename,
// then each scratch name is stripped down to index plus extension. The
// scratch phase makes the final names collision free even when the input
// already contains files named like the output.
func (m *Materializer) RenameSequence(seq sorter.SequencedList) error {
	type op struct {
		index   int
		scratch string
		ext     string
	}

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	scratchStrategy := m.strategy
	scratchStrategy.LogChanges = false

	bar := m.newBar(len(seq), "Renaming")
	applied := make([]op, 0, len(seq))
	for i, item := range seq {
		base := filepath.Base(item.Path)
		scratch := filepath.Join(m.outputDir, fmt.Sprintf("%05d_%s", i, base))
		if err := m.materializeOne(item.Path, scratch, scratchStrategy); err != nil {
			m.logger.Error("failed to rename file", "source", item.Path, "error", err)
			_ = bar.Add(1)
			continue
		}
		applied = append(applied, op{index: i, scratch: scratch, ext: filepath.Ext(base)})
		_ = bar.Add(1)
	}

	for _, o := range applied {
		final := filepath.Join(m.outputDir, fmt.Sprintf("%05d%s", o.index, o.ext))
		if err := os.Rename(o.scratch, final); err != nil {
			m.logger.Error("failed to strip scratch name", "source", o.scratch, "error", err)
			continue
		}
		if m.strategy.LogChanges {
			m.changes.Record(o.scratch, final)
		}
	}
	return nil
}

func (m *Materializer) materializeOne(src, dst string, strategy Strategy) error {
	var err error
	if strategy.KeepOriginal {
		err = copyFile(src, dst)
	} else {
		err = os.Rename(src, dst)
	}
	if err != nil {
		return err
	}
	if strategy.LogChanges {
		m.changes.Record(src, dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func (m *Materializer) newBar(count int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(m.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
