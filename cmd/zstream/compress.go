package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/internal/blobio"
)

var compressCmd = &cobra.Command{
	Use:   "compress [SRC] [DST]",
	Short: "Compress a blob",
	Long: `Compress SRC into DST using the selected format.

With no arguments, reads standard input and writes standard output.
With only SRC, writes next to the source with the format's suffix
(.gz, .zz or .deflate).

For gzip output the source file's name and modification time are
recorded in the header unless --no-name is given.

Examples:
  # Compress a file to gzip at the default level
  zstream compress access.log

  # Maximum compression to an explicit destination
  zstream compress --level 9 input.txt out.gz

  # zlib with a preset dictionary
  zstream compress --format zlib --dict tokens.bin input.txt out.zz

  # Split the output into 4 MiB gzip members
  zstream compress --member-size 4194304 big.log big.log.gz`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCompress,
}

var (
	compressFormat string
	compressLevel  int
	gzipName       string
	gzipComment    string
	noName         bool
	memberSize     int64
	dictPath       string
)

func init() {
	compressCmd.Flags().StringVarP(&compressFormat, "format", "f", "gzip", "output format: gzip, zlib, raw")
	compressCmd.Flags().IntVarP(&compressLevel, "level", "l", int(zstream.DefaultCompression), "compression level: -2 to 9")
	compressCmd.Flags().StringVar(&gzipName, "name", "", "file name to record in the gzip header")
	compressCmd.Flags().StringVar(&gzipComment, "comment", "", "comment to record in the gzip header")
	compressCmd.Flags().BoolVar(&noName, "no-name", false, "do not record name and timestamp in the gzip header")
	compressCmd.Flags().Int64Var(&memberSize, "member-size", 0, "start a new gzip member after this many input bytes")
	compressCmd.Flags().StringVar(&dictPath, "dict", "", "preset dictionary file (zlib and raw only)")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	format, err := zstream.ParseFormat(compressFormat)
	if err != nil {
		return err
	}

	src, dst := "-", "-"
	if len(args) > 0 {
		src = args[0]
	}
	if len(args) > 1 {
		dst = args[1]
	} else if src != "-" {
		dst = src + suffixFor(format)
	}

	opts := []zstream.Option{
		zstream.WithBackend(backendName),
		zstream.WithLevel(zstream.Level(compressLevel)),
	}
	if memberSize > 0 {
		opts = append(opts, zstream.WithMemberSize(memberSize))
	}
	if dictPath != "" {
		dict, err := os.ReadFile(dictPath)
		if err != nil {
			return fmt.Errorf("reading dictionary: %w", err)
		}
		opts = append(opts, zstream.WithDictionary(dict))
	}
	if gzipName != "" {
		opts = append(opts, zstream.WithName(gzipName))
	}
	if gzipComment != "" {
		opts = append(opts, zstream.WithComment(gzipComment))
	}
	if format == zstream.Gzip && gzipName == "" && !noName && isLocalFile(src) {
		if info, err := os.Stat(src); err == nil {
			opts = append(opts,
				zstream.WithName(filepath.Base(src)),
				zstream.WithModTime(info.ModTime()))
		}
	}

	fs := blobio.New()
	ctx := context.Background()

	in, err := fs.Open(ctx, src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.Create(ctx, dst)
	if err != nil {
		return err
	}

	zw, err := zstream.NewWriter(out, format, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := io.Copy(zw, in); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}

	if verbose {
		ratio := 0.0
		if zw.TotalIn() > 0 {
			ratio = 100 * float64(zw.TotalOut()) / float64(zw.TotalIn())
		}
		fmt.Fprintf(os.Stderr, "%s: %s -> %s (%.1f%%) in %s\n",
			dst, formatBytes(zw.TotalIn()), formatBytes(zw.TotalOut()),
			ratio, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func suffixFor(format zstream.Format) string {
	switch format {
	case zstream.Gzip:
		return ".gz"
	case zstream.Zlib:
		return ".zz"
	default:
		return ".deflate"
	}
}

func isLocalFile(target string) bool {
	return target != "-" && !strings.Contains(target, "://")
}
