package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inlimbo/core/internal/engine"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio output devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range engine.Enumerate() {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, d.Name, d.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
