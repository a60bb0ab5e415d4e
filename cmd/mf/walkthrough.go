package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/preview"
	"github.com/motionforge/motionforge/pkg/script"
	"github.com/motionforge/motionforge/pkg/walkthrough"
)

var (
	walkIn     string
	walkGoal   string
	walkScript string
	walkWidth  int
	walkRaw    bool
)

var walkthroughCmd = &cobra.Command{
	Use:   "walkthrough",
	Short: "Render a reviewable walkthrough of a plan and its diff",
	Long: "walkthrough resolves a goal or script against the given project, " +
		"previews the keyframe diff, and renders a markdown account of what " +
		"an apply would do. Nothing is mutated.",
	RunE: runWalkthrough,
}

func runWalkthrough(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(walkIn)
	if err != nil {
		return err
	}

	var (
		p     *plan.Plan
		warns []string
	)
	switch {
	case walkScript != "":
		data, err := os.ReadFile(walkScript)
		if err != nil {
			return err
		}
		ctx := script.Context{
			Defaults: script.Defaults{
				FPS:         rt.ClipFPS(),
				DurationSec: rt.ClipDuration(),
			},
			SelectedObjectID: rt.SelectedObjectID(),
		}
		for _, o := range rt.ObjectRefs() {
			ctx.AvailableObjects = append(ctx.AvailableObjects, script.ObjectRef{ID: o.ID, Name: o.Name})
		}
		compiled := script.Compile(string(data), ctx)
		if !compiled.OK {
			for _, e := range compiled.Errors {
				fmt.Fprintf(os.Stderr, "error: %s\n", e)
			}
			return fmt.Errorf("%d compile error(s)", len(compiled.Errors))
		}
		p = compiled.Plan
		for _, w := range compiled.Warnings {
			warns = append(warns, w.String())
		}

	case walkGoal != "":
		snap := planner.Snapshot{SelectedObjectID: rt.SelectedObjectID()}
		for _, o := range rt.ObjectRefs() {
			snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
		}
		gp, err := planner.GeneratePlan(planner.Input{Goal: walkGoal}, snap)
		if err != nil {
			return err
		}
		p = gp

	default:
		return fmt.Errorf("either --goal or --script is required")
	}

	diff, err := preview.Plan(p, rt)
	if err != nil {
		return err
	}

	md := walkthrough.BuildMarkdown(p, diff, warns)
	if walkRaw {
		fmt.Print(md)
		return nil
	}
	out := walkthrough.Render(md, walkWidth)
	fmt.Print(strings.TrimLeft(out, "\n"))
	return nil
}

func init() {
	walkthroughCmd.Flags().StringVar(&walkIn, "in", "", "project JSON giving scene context")
	walkthroughCmd.Flags().StringVar(&walkGoal, "goal", "", "goal to walk through")
	walkthroughCmd.Flags().StringVar(&walkScript, "script", "", "script file to walk through")
	walkthroughCmd.Flags().IntVar(&walkWidth, "width", 100, "render width in columns")
	walkthroughCmd.Flags().BoolVar(&walkRaw, "raw", false, "emit raw markdown instead of styled output")

	rootCmd.AddCommand(walkthroughCmd)
}
