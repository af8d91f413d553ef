package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/internal/blobio"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress [SRC] [DST]",
	Short: "Decompress a blob",
	Long: `Decompress SRC into DST.

With no arguments, reads standard input and writes standard output.
With only SRC, strips the format suffix (.gz, .zz or .deflate) to
derive the destination name.

Examples:
  # Decompress a gzip file
  zstream decompress access.log.gz

  # Decompress concatenated gzip members as one stream
  zstream decompress --multistream combined.gz combined.log

  # zlib with the dictionary the stream was compressed with
  zstream decompress --format zlib --dict tokens.bin out.zz input.txt`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDecompress,
}

var (
	decompressFormat string
	multistream      bool
	decompressDict   string
)

func init() {
	decompressCmd.Flags().StringVarP(&decompressFormat, "format", "f", "gzip", "input format: gzip, zlib, raw")
	decompressCmd.Flags().BoolVar(&multistream, "multistream", false, "decode concatenated gzip members as one stream")
	decompressCmd.Flags().StringVar(&decompressDict, "dict", "", "preset dictionary file (zlib and raw only)")
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	format, err := zstream.ParseFormat(decompressFormat)
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
		dst = strings.TrimSuffix(src, suffixFor(format))
		if dst == src {
			return fmt.Errorf("cannot derive output name for %q; specify DST", src)
		}
	}

	opts := []zstream.Option{
		zstream.WithBackend(backendName),
	}
	if multistream {
		opts = append(opts, zstream.WithMultistream(true))
	}
	if decompressDict != "" {
		dict, err := os.ReadFile(decompressDict)
		if err != nil {
			return fmt.Errorf("reading dictionary: %w", err)
		}
		opts = append(opts, zstream.WithDictionary(dict))
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

	zr, err := zstream.NewReader(in, format, opts...)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	start := time.Now()
	if _, err := io.Copy(out, zr); err != nil {
		return fmt.Errorf("decompressing %s: %w", src, err)
	}
	if err := zr.Close(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s: %s -> %s in %s\n",
			dst, formatBytes(zr.TotalIn()), formatBytes(zr.TotalOut()),
			time.Since(start).Round(time.Millisecond))
	}
	return nil
}
