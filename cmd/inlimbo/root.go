package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set by the release build; "dev" for local builds.
var Version = "dev"

var preamble = `inlimbo ` + Version + `

inlimbo is a terminal music player: a library indexer, an audio
playback engine, and an MPRIS bridge so desktop shells and media keys
can control it.

This binary is the operator CLI around that core: scan a music
directory into the library index, enumerate output devices, play the
library from the terminal, or run as an MPRIS-controllable background
service.`

var rootCmd = &cobra.Command{
	Use:     "inlimbo",
	Short:   "inlimbo music player core",
	Long:    preamble,
	Version: Version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
