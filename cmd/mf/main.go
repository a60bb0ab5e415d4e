package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/project"
	"github.com/motionforge/motionforge/pkg/proof"
	"github.com/motionforge/motionforge/pkg/runtime"
	"github.com/motionforge/motionforge/pkg/script"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mf",
	Short: "Deterministic animation scripting and execution core",
	Long: "mf compiles animation scripts and natural-language goals into " +
		"deterministic plans, previews their effect, applies them atomically, " +
		"and emits hash-verified proof bundles.",
	SilenceUsage: true,
}

// --- config ---

// cliConfig is read from motionforge.yaml in the working directory when
// present. Flags take precedence over config values.
type cliConfig struct {
	OutDir   string `yaml:"out_dir"`
	Defaults struct {
		DurationSec float64 `yaml:"duration_sec"`
		FPS         float64 `yaml:"fps"`
	} `yaml:"defaults"`
	Generator struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"generator"`
}

// loadConfig reads motionforge.yaml, returning zero values when the
// file is absent.
func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	data, err := os.ReadFile("motionforge.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read motionforge.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse motionforge.yaml: %w", err)
	}
	return cfg, nil
}

func (c cliConfig) generator() proof.Generator {
	g := proof.Generator{Name: c.Generator.Name, Version: c.Generator.Version}
	if g.Name == "" {
		g.Name = "motionforge"
	}
	if g.Version == "" {
		g.Version = version
	}
	return g
}

// --- validate ---

var validateProjectFile string

var validateCmd = &cobra.Command{
	Use:   "validate <script-file>",
	Short: "Validate a script (or, with a .json argument, a project document)",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, ".json") {
		doc, err := project.Parse(data)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s is valid (%d objects, %d tracks)\n",
			path, len(doc.Scene.Objects), len(doc.Clip.Tracks))
		return nil
	}

	ctx, err := scriptContextFor(validateProjectFile)
	if err != nil {
		return err
	}
	result := script.Validate(string(data), ctx)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if !result.Valid() {
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(result.Errors))
	}
	fmt.Printf("✓ %s is valid\n", path)
	return nil
}

// --- compile ---

var compileProjectFile string

var compileCmd = &cobra.Command{
	Use:   "compile <script-file>",
	Short: "Compile a script into a deterministic plan (JSON on stdout)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ctx, err := scriptContextFor(compileProjectFile)
	if err != nil {
		return err
	}

	compiled := script.Compile(string(data), ctx)
	for _, w := range compiled.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !compiled.OK {
		for _, e := range compiled.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("%d compile error(s)", len(compiled.Errors))
	}
	return printJSON(compiled.Plan)
}

// --- plan ---

var (
	planProjectFile string
	planDuration    float64
	planFPS         float64
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Expand a natural-language goal into a plan (JSON on stdout)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	rt, err := runtimeFor(planProjectFile)
	if err != nil {
		return err
	}

	snap := planner.Snapshot{SelectedObjectID: rt.SelectedObjectID()}
	for _, o := range rt.ObjectRefs() {
		snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
	}
	p, err := planner.GeneratePlan(planner.Input{
		Goal:        goal,
		Constraints: planner.Constraints{DurationSec: planDuration, FPS: planFPS},
	}, snap)
	if err != nil {
		var perr *planner.Error
		if errors.As(err, &perr) && len(perr.Suggestions) > 0 {
			fmt.Fprintf(os.Stderr, "error: %s\n", perr.Message)
			fmt.Fprintf(os.Stderr, "try one of: %s\n", strings.Join(perr.Suggestions, ", "))
			return fmt.Errorf("%s", perr.Code)
		}
		return err
	}
	return printJSON(p)
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "JSON Schema tools",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export JSON Schema (project or proof) to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaType, _ := cmd.Flags().GetString("type")
		var data []byte
		var err error
		switch schemaType {
		case "project":
			data, err = project.GenerateJSONSchema()
		case "proof":
			data, err = proof.GenerateJSONSchema()
		default:
			return fmt.Errorf("unknown schema type %q (use 'project' or 'proof')", schemaType)
		}
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mf %s (%s)\n", version, commit)
	},
}

// --- shared helpers ---

// runtimeFor builds a runtime, loading the given project file when the
// path is non-empty.
func runtimeFor(projectFile string) (*runtime.Runtime, error) {
	rt := runtime.New()
	if projectFile == "" {
		return rt, nil
	}
	data, err := os.ReadFile(projectFile)
	if err != nil {
		return nil, err
	}
	if err := rt.LoadProjectJSON(data, runtime.LoadOptions{}); err != nil {
		return nil, err
	}
	return rt, nil
}

// scriptContextFor derives a compile context from an optional project
// file.
func scriptContextFor(projectFile string) (script.Context, error) {
	rt, err := runtimeFor(projectFile)
	if err != nil {
		return script.Context{}, err
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
	return ctx, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validateProjectFile, "in", "", "project JSON giving scene context")
	compileCmd.Flags().StringVar(&compileProjectFile, "in", "", "project JSON giving scene context")
	planCmd.Flags().StringVar(&planProjectFile, "in", "", "project JSON giving scene context")
	planCmd.Flags().Float64Var(&planDuration, "duration", 0, "clip duration in seconds")
	planCmd.Flags().Float64Var(&planFPS, "fps", 0, "clip frame rate")
	schemaExportCmd.Flags().String("type", "project", "schema type: 'project' or 'proof'")
	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
