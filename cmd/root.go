package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"facesort/internal/logging"
)

var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "facesort",
	Short: "A CLI tool for sorting face crops by similarity",
	Long: `Facesort orders and groups directories of extracted face images.
It fingerprints every image under a selected metric (sharpness, color,
facial landmarks, identity embeddings), computes an ordering or a
partition into similarity groups, and applies the result by renaming
files or moving them into numbered folders.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	logger = logging.New(logging.WithVerbose(verbose))
	// every run carries an id so interleaved logs from repeated runs separate
	logger = logger.With("run", uuid.NewString())
}
