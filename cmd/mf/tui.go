package main

import (
	"github.com/spf13/cobra"

	"github.com/motionforge/motionforge/pkg/tui"
)

var tuiProjectFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive full-screen scene and plan reviewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := runtimeFor(tuiProjectFile)
		if err != nil {
			return err
		}
		return tui.Run(tui.Config{Runtime: rt})
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiProjectFile, "in", "", "project JSON to load at startup")
	rootCmd.AddCommand(tuiCmd)
}
