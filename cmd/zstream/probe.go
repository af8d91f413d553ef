package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zstreamio/zstream"
	"github.com/zstreamio/zstream/internal/blobio"
)

var probeCmd = &cobra.Command{
	Use:   "probe BLOB",
	Short: "Show gzip header metadata",
	Long: `Read the gzip header of BLOB and print the metadata it records,
without decompressing the payload.

Examples:
  # Show the original file name and timestamp
  zstream probe backup.tar.gz

  # Machine-readable output
  zstream probe --json backup.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

var probeJSON bool

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	fs := blobio.New()
	ctx := context.Background()

	in, err := fs.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := zstream.NewReader(in, zstream.Gzip, zstream.WithBackend(backendName))
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer zr.Close()

	hdr := zr.Header()
	if probeJSON {
		printHeaderJSON(hdr)
	} else {
		printHeaderText(hdr)
	}
	return nil
}

func printHeaderText(hdr zstream.Header) {
	name := hdr.Name
	if name == "" {
		name = "-"
	}
	comment := hdr.Comment
	if comment == "" {
		comment = "-"
	}
	mtime := "-"
	if !hdr.ModTime.IsZero() {
		mtime = hdr.ModTime.UTC().Format("2006-01-02 15:04:05 MST")
	}

	fmt.Printf("Name:    %s\n", name)
	fmt.Printf("Comment: %s\n", comment)
	fmt.Printf("ModTime: %s\n", mtime)
	fmt.Printf("OS:      %s (%d)\n", osName(hdr.OS), hdr.OS)
	fmt.Printf("Extra:   %s\n", formatBytes(int64(len(hdr.Extra))))
}

func printHeaderJSON(hdr zstream.Header) {
	fmt.Printf(`{"name":%q,"comment":%q`, hdr.Name, hdr.Comment)
	if !hdr.ModTime.IsZero() {
		fmt.Printf(`,"mtime":%d`, hdr.ModTime.Unix())
	}
	fmt.Printf(`,"os":%d,"extra_bytes":%d`, hdr.OS, len(hdr.Extra))
	fmt.Println("}")
}

// osName maps the gzip header OS byte to a readable label.
func osName(b byte) string {
	switch b {
	case 0:
		return "fat"
	case 3:
		return "unix"
	case 7:
		return "macintosh"
	case 11:
		return "ntfs"
	case zstream.OSUnknown:
		return "unknown"
	default:
		return "other"
	}
}
