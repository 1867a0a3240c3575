package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inlimbo/core/internal/config"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the configured music directory and rebuild the library index",
	Long: "Walk the music directory named in config.toml, extract tags and " +
		"cover art from every file found, and write the result to the " +
		"on-disk library cache, replacing whatever was there.",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if loaded.Config.Library.Directory == "" {
			return fmt.Errorf("no library directory configured; set library.directory in config.toml")
		}
		for _, w := range loaded.Warnings {
			fmt.Fprintln(os.Stderr, w.String())
		}

		artDir, err := config.ArtCacheDir()
		if err != nil {
			return fmt.Errorf("resolve art cache dir: %w", err)
		}
		result, err := buildIndex(loaded, artDir)
		if err != nil {
			return err
		}
		for path, extractErr := range result.Errors {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, extractErr)
		}

		libPath, err := config.LibBinPath()
		if err != nil {
			return fmt.Errorf("resolve library cache path: %w", err)
		}
		if err := result.Index.Save(libPath, loaded.Config.Library.Directory); err != nil {
			return fmt.Errorf("save library cache: %w", err)
		}

		fmt.Println(result.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
