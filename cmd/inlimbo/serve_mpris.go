package main

import (
	"github.com/spf13/cobra"
)

var serveMprisCmd = &cobra.Command{
	Use:   "serve-mpris",
	Short: "Play the library and expose MPRIS media-key/shell controls",
	Long: "Like play, but also registers an MPRIS D-Bus session so desktop " +
		"media keys, shells, and notification areas can control playback. " +
		"A no-op stub on non-Linux builds.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd, true)
	},
}

func init() {
	serveMprisCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle the playlist")
	serveMprisCmd.Flags().StringVar(&playRepeat, "repeat", "off", "repeat mode: off, one, all")
	rootCmd.AddCommand(serveMprisCmd)
}
