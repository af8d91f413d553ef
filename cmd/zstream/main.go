// Package main provides the zstream CLI tool for compressing,
// decompressing and inspecting gzip, zlib and raw deflate streams.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
