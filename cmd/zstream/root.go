package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags.
	backendName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "zstream",
	Short: "Streaming gzip, zlib and raw deflate compression",
	Long: `zstream compresses, decompresses and inspects streams in the
deflate family of formats: gzip, zlib and raw deflate.

Sources and destinations can be local files, standard streams ("-"),
HTTP URLs, or gs:// and s3:// objects.

Examples:
  # Compress a file to gzip
  zstream compress input.txt input.txt.gz

  # Decompress from stdin to stdout
  cat blob.gz | zstream decompress - -

  # Show gzip header metadata
  zstream probe blob.gz

  # Verify every blob in a directory
  zstream verify ./blobs/`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "klauspost", "compression backend: klauspost, stdlib")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
