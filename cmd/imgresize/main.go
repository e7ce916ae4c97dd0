package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypermemo/hypermemo/internal/resize"
)

func main() {
	opts := resize.DefaultOptions()
	var dir string

	rootCmd := &cobra.Command{
		Use:   "imgresize",
		Short: "normalize screenshot images to a fixed canvas",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("stat %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return resize.ProcessDir(dir, opts)
		},
	}

	rootCmd.Flags().StringVar(&dir, "dir", "screenshots", "directory containing images")
	rootCmd.Flags().IntVar(&opts.Width, "width", opts.Width, "canvas width")
	rootCmd.Flags().IntVar(&opts.Height, "height", opts.Height, "canvas height")
	rootCmd.Flags().IntVar(&opts.Quality, "quality", opts.Quality, "jpeg quality")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
