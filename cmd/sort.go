package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"facesort/internal/config"
	"facesort/internal/curator"
	"facesort/internal/metric"
)

var sortCmd = &cobra.Command{
	Use:   "sort [input-dir]",
	Short: "Sort face images by a similarity metric",
	Long: `Sort the face images of a directory by a similarity metric.
The command fingerprints every image, computes an ordering (or groups,
with --final-process folders), and applies the result to the filesystem.
Run "facesort metrics" to list the available metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runSort,
}

func init() {
	rootCmd.AddCommand(sortCmd)

	sortCmd.Flags().StringP("sort-by", "s", "face-cnn", "Metric used to order the images")
	sortCmd.Flags().StringP("group-by", "g", "", "Metric used to group the images (default: same as --sort-by)")
	sortCmd.Flags().StringP("final-process", "f", "rename", "How to apply the result: rename, folders")
	sortCmd.Flags().StringP("output-dir", "o", "", "Destination directory (default: sort in place)")
	sortCmd.Flags().IntP("num-bins", "b", 5, "Number of groups for binning metrics")
	sortCmd.Flags().Float64P("threshold", "t", -1.0, "Clustering threshold (default: per-metric)")
	sortCmd.Flags().BoolP("keep-original", "k", false, "Copy files instead of moving them")
	sortCmd.Flags().Bool("log-changes", false, "Record every applied file operation")
	sortCmd.Flags().String("log-file", "", "Change log path (default: <input-dir>/sort_log.json)")
	sortCmd.Flags().Int("workers", 0, "Parallel fingerprinting workers (0 = number of CPUs)")
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	finalProcess, err := curator.ParseFinalProcess(mustGetString(cmd, "final-process"))
	if err != nil {
		return err
	}

	opts := curator.Options{
		InputDir:     args[0],
		OutputDir:    mustGetString(cmd, "output-dir"),
		SortBy:       mustGetString(cmd, "sort-by"),
		GroupBy:      mustGetString(cmd, "group-by"),
		FinalProcess: finalProcess,
		NumBins:      mustGetInt(cmd, "num-bins"),
		Threshold:    mustGetFloat64(cmd, "threshold"),
		KeepOriginal: mustGetBool(cmd, "keep-original"),
		LogChanges:   mustGetBool(cmd, "log-changes"),
		LogFile:      mustGetString(cmd, "log-file"),
		Workers:      mustGetInt(cmd, "workers"),
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := metric.NewRegistry(metric.NewEmbedClient(cfg.Embedding.URL))
	return curator.New(registry, logger).Run(ctx, opts)
}
