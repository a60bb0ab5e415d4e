package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionforge/pkg/pipeline"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/proof"
)

var (
	bundleIn       string
	bundleGoal     string
	bundleScript   string
	bundleTakes    string
	bundleOut      string
	bundleConfirm  bool
	bundleStaged   bool
	bundleDuration float64
	bundleFPS      float64
)

var makeBundleCmd = &cobra.Command{
	Use:   "make-bundle",
	Short: "Run the full pipeline and write a verifiable proof bundle",
	Long: "make-bundle resolves a goal or script into a plan, previews the " +
		"keyframe diff, applies it atomically when confirmed, and writes " +
		"project.json, proof.json, events.jsonl, run.yaml and bundle.zip to " +
		"the output directory.\n\n" +
		"Exit codes: 0 success, 1 failure, 2 confirmation required.",
	RunE: runMakeBundle,
}

func runMakeBundle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outDir := bundleOut
	if outDir == "" {
		outDir = cfg.OutDir
	}
	if outDir == "" {
		outDir = "out"
	}

	opts := pipeline.Options{
		Goal:    bundleGoal,
		Confirm: bundleConfirm,
		Staged:  bundleStaged,
		OutDir:  outDir,
		Constraints: planner.Constraints{
			DurationSec: bundleDuration,
			FPS:         bundleFPS,
		},
		Generator: cfg.generator(),
	}

	if bundleScript != "" {
		data, err := os.ReadFile(bundleScript)
		if err != nil {
			return err
		}
		opts.Script = string(data)
	}
	if bundleIn != "" {
		data, err := os.ReadFile(bundleIn)
		if err != nil {
			return err
		}
		opts.InputJSON = data
	}
	if bundleTakes != "" {
		takes, err := pipeline.ParseTakesFlag(bundleTakes)
		if err != nil {
			return err
		}
		opts.Takes = takes
	}

	result, err := pipeline.Run(opts)
	if errors.Is(err, pipeline.ErrConfirmRequired) {
		printRunSummary(result, outDir)
		fmt.Fprintln(os.Stderr, "preview only — re-run with --confirm to apply")
		os.Exit(2)
	}
	if err != nil {
		return err
	}

	printRunSummary(result, outDir)
	fmt.Printf("✓ bundle written to %s\n", outDir)
	return nil
}

func printRunSummary(result *pipeline.Result, outDir string) {
	if result == nil {
		return
	}
	fmt.Printf("plan %s: %d step(s), %d mutation(s)\n",
		result.Plan.ID, len(result.Plan.Steps), len(result.Plan.MutateSteps()))
	if result.Diff != nil {
		fmt.Printf("preview: %d key(s) added, %d removed, %d changed\n",
			result.Diff.TotalAdded, result.Diff.TotalRemoved, result.Diff.TotalChanged)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if result.Proof != nil {
		fmt.Printf("proof: plan %s output %s\n",
			short(result.Proof.PlanHash), short(result.Proof.OutputHash))
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	if hash == "" {
		return "-"
	}
	return hash
}

var verifyBundleCmd = &cobra.Command{
	Use:   "verify-bundle <dir>",
	Short: "Re-hash a bundle's project export against its proof",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := proof.VerifyBundleDir(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ %s: artifacts match proof\n", args[0])
		return nil
	},
}

func init() {
	makeBundleCmd.Flags().StringVar(&bundleIn, "in", "", "input project JSON file")
	makeBundleCmd.Flags().StringVar(&bundleGoal, "goal", "", "natural-language animation goal")
	makeBundleCmd.Flags().StringVar(&bundleScript, "script", "", "script file to compile instead of a goal")
	makeBundleCmd.Flags().StringVar(&bundleTakes, "takes", "", "explicit takes as Name:start..end[,Name2:...]")
	makeBundleCmd.Flags().StringVar(&bundleOut, "out", "", "output directory (default from config, else 'out')")
	makeBundleCmd.Flags().BoolVar(&bundleConfirm, "confirm", false, "apply the plan (without this the run is preview-only)")
	makeBundleCmd.Flags().BoolVar(&bundleStaged, "staged", true, "stage the input load and commit only if it parses clean")
	makeBundleCmd.Flags().Float64Var(&bundleDuration, "duration", 0, "clip duration in seconds")
	makeBundleCmd.Flags().Float64Var(&bundleFPS, "fps", 0, "clip frame rate")

	rootCmd.AddCommand(makeBundleCmd)
	rootCmd.AddCommand(verifyBundleCmd)
}
