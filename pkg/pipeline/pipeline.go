// Package pipeline composes the full run: resolve a goal or script into
// a plan, preview the diff, gate on confirm, apply atomically, commit,
// and export the project plus a canonical proof bundle.
package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/motionforge/motionforge/pkg/apply"
	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/preview"
	"github.com/motionforge/motionforge/pkg/proof"
	"github.com/motionforge/motionforge/pkg/runtime"
	"github.com/motionforge/motionforge/pkg/script"
)

// ErrConfirmRequired signals that the run stopped at the confirm gate:
// preview artifacts were written but nothing was mutated. Distinct from
// genuine failures so front ends can exit differently.
var ErrConfirmRequired = &runtime.Error{
	Code:    runtime.CodeConfirmRequired,
	Message: "applying this plan requires explicit confirmation",
}

// Options configure one pipeline run. Exactly one of Goal or Script
// drives plan resolution.
type Options struct {
	Goal        string
	Script      string
	Takes       []plan.Take // explicit takes, overriding derived ones
	Constraints planner.Constraints
	Confirm     bool
	Staged      bool // stage + commit the input project load
	OutDir      string
	InputJSON   []byte // serialized project to start from, may be empty
	Generator   proof.Generator
}

// Result is what a run produced. On ErrConfirmRequired it is still
// populated with the plan, diff, and preview-only proof.
type Result struct {
	Plan        *plan.Plan
	Diff        *preview.Diff
	Proof       *proof.Document
	Warnings    []string
	Applied     bool
	ProjectJSON []byte
}

// Run executes the pipeline. Artifacts (proof.json, run.yaml and, after
// an apply, project.json, events.jsonl, bundle.zip) are written to
// opts.OutDir when it is set.
func Run(opts Options) (*Result, error) {
	rt := runtime.New()
	if len(opts.InputJSON) > 0 {
		if opts.Staged {
			if err := rt.LoadProjectJSON(opts.InputJSON, runtime.LoadOptions{Staged: true}); err != nil {
				return nil, err
			}
			if err := rt.CommitStagedLoad(); err != nil {
				return nil, err
			}
		} else {
			if err := rt.LoadProjectJSON(opts.InputJSON, runtime.LoadOptions{}); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{}
	p, warnings, err := resolvePlan(opts, rt)
	if err != nil {
		return nil, err
	}
	result.Plan = p
	result.Warnings = warnings

	if len(opts.Takes) > 0 {
		overrideTakes(p, opts.Takes)
	}

	diff, err := preview.Plan(p, rt)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	result.Diff = diff

	if !opts.Confirm {
		doc, err := proof.BuildDocument(proofBuild(opts, result, nil, "", true))
		if err != nil {
			return nil, err
		}
		result.Proof = doc
		if opts.OutDir != "" {
			if err := writeArtifacts(opts.OutDir, result, nil, nil); err != nil {
				return nil, err
			}
		}
		return result, ErrConfirmRequired
	}

	var traceBuf bytes.Buffer
	tw := runtime.NewTraceWriter(&traceBuf)
	rt.SetTrace(tw)

	applied := apply.Plan(p, rt)
	if !applied.OK {
		return nil, fmt.Errorf("apply failed at step %s after %d command(s): %w",
			applied.FailedStepID, applied.CommandsExecuted, applied.Err)
	}
	result.Applied = true

	projectJSON, err := rt.ExportProjectJSON()
	if err != nil {
		return nil, err
	}
	result.ProjectJSON = []byte(projectJSON)

	doc, err := proof.BuildDocument(proofBuild(opts, result, result.ProjectJSON, tw.ChainHash(), false))
	if err != nil {
		return nil, err
	}
	result.Proof = doc

	if opts.OutDir != "" {
		if err := writeArtifacts(opts.OutDir, result, result.ProjectJSON, traceBuf.Bytes()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolvePlan compiles the script or expands the goal into a plan.
func resolvePlan(opts Options, rt *runtime.Runtime) (*plan.Plan, []string, error) {
	switch {
	case opts.Script != "":
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
		compiled := script.Compile(opts.Script, ctx)
		if !compiled.OK {
			return nil, nil, fmt.Errorf("script compilation failed: %s", firstDiag(compiled.Errors))
		}
		return compiled.Plan, diagStrings(compiled.Warnings), nil

	case opts.Goal != "":
		snap := planner.Snapshot{SelectedObjectID: rt.SelectedObjectID()}
		for _, o := range rt.ObjectRefs() {
			snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
		}
		p, err := planner.GeneratePlan(planner.Input{Goal: opts.Goal, Constraints: opts.Constraints}, snap)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil

	default:
		return nil, nil, fmt.Errorf("either a goal or a script is required")
	}
}

// overrideTakes replaces (or appends) the plan's set-takes step with the
// explicitly requested takes.
func overrideTakes(p *plan.Plan, takes []plan.Take) {
	input := map[string]any{"takes": takeInputs(takes)}
	for i := range p.Steps {
		if p.Steps[i].Command.Action == "animation.setTakes" {
			p.Steps[i].Command.Input = input
			return
		}
	}
	p.Steps = append(p.Steps, plan.Step{
		ID:        fmt.Sprintf("s%02d-set-takes", len(p.Steps)+1),
		Label:     "Set takes",
		Type:      plan.StepMutate,
		Command:   plan.Command{Action: "animation.setTakes", Input: input},
		Rationale: "takes supplied explicitly by the caller",
	})
}

func proofBuild(opts Options, result *Result, outputJSON []byte, chainHash string, previewOnly bool) proof.Build {
	return proof.Build{
		Generator:   opts.Generator,
		Goal:        opts.Goal,
		Script:      opts.Script,
		Plan:        result.Plan,
		Takes:       planTakes(result.Plan),
		InputJSON:   opts.InputJSON,
		OutputJSON:  outputJSON,
		ChainHash:   chainHash,
		Diff:        result.Diff,
		Warnings:    result.Warnings,
		PreviewOnly: previewOnly,
	}
}

// planTakes recovers the take list from the plan's set-takes step.
func planTakes(p *plan.Plan) []plan.Take {
	for _, s := range p.Steps {
		if s.Command.Action != "animation.setTakes" {
			continue
		}
		raw, _ := s.Command.Input["takes"].([]map[string]any)
		takes := make([]plan.Take, 0, len(raw))
		for _, m := range raw {
			t := plan.Take{}
			t.ID, _ = m["id"].(string)
			t.Name, _ = m["name"].(string)
			t.StartTime = asFloat(m["startTime"])
			t.EndTime = asFloat(m["endTime"])
			takes = append(takes, t)
		}
		return takes
	}
	return nil
}

// runManifest is the operator-facing run summary written next to the
// machine-facing proof.
type runManifest struct {
	Generator string `yaml:"generator"`
	Goal      string `yaml:"goal,omitempty"`
	Mode      string `yaml:"mode"`
	PlanID    string `yaml:"plan_id"`
	Steps     int    `yaml:"steps"`
	Mutations int    `yaml:"mutations"`
	Added     int    `yaml:"keys_added"`
	Removed   int    `yaml:"keys_removed"`
	Changed   int    `yaml:"keys_changed"`
}

func writeArtifacts(outDir string, result *Result, projectJSON, traceJSONL []byte) error {
	proofJSON, err := result.Proof.MarshalCanonical()
	if err != nil {
		return err
	}

	mode := "preview"
	if result.Applied {
		mode = "applied"
	}
	manifest := runManifest{
		Generator: result.Proof.Generator.Name + " " + result.Proof.Generator.Version,
		Goal:      result.Proof.Goal,
		Mode:      mode,
		PlanID:    result.Plan.ID,
		Steps:     len(result.Plan.Steps),
		Mutations: len(result.Plan.MutateSteps()),
	}
	if result.Diff != nil {
		manifest.Added = result.Diff.TotalAdded
		manifest.Removed = result.Diff.TotalRemoved
		manifest.Changed = result.Diff.TotalChanged
	}
	manifestYAML, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal run manifest: %w", err)
	}

	files := map[string][]byte{
		"proof.json": proofJSON,
		"run.yaml":   manifestYAML,
	}
	if projectJSON != nil {
		files["project.json"] = projectJSON
	}
	if traceJSONL != nil {
		files["events.jsonl"] = traceJSONL
	}
	return proof.WriteBundle(outDir, files)
}

func firstDiag(diags []script.Diagnostic) string {
	if len(diags) == 0 {
		return "unknown error"
	}
	return diags[0].String()
}

func diagStrings(diags []script.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.String())
	}
	return out
}

func takeInputs(takes []plan.Take) []map[string]any {
	out := make([]map[string]any, 0, len(takes))
	for _, t := range takes {
		out = append(out, map[string]any{
			"id":        t.ID,
			"name":      t.Name,
			"startTime": t.StartTime,
			"endTime":   t.EndTime,
		})
	}
	return out
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// ParseTakesFlag parses the CLI takes syntax "Name:start..end,Name2:...".
func ParseTakesFlag(s string) ([]plan.Take, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var takes []plan.Take
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		name, timeRange, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("take %d: expected Name:start..end, got %q", i+1, part)
		}
		startStr, endStr, ok := strings.Cut(timeRange, "..")
		if !ok {
			return nil, fmt.Errorf("take %q: expected start..end, got %q", name, timeRange)
		}
		var start, end float64
		if _, err := fmt.Sscanf(strings.TrimSpace(startStr), "%g", &start); err != nil {
			return nil, fmt.Errorf("take %q: bad start time %q", name, startStr)
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(endStr), "%g", &end); err != nil {
			return nil, fmt.Errorf("take %q: bad end time %q", name, endStr)
		}
		if start < 0 || start >= end {
			return nil, fmt.Errorf("take %q: range [%v, %v] must satisfy 0 <= start < end", name, start, end)
		}
		takes = append(takes, plan.Take{
			ID:        "take_" + slug(name),
			Name:      strings.TrimSpace(name),
			StartTime: start,
			EndTime:   end,
		})
	}
	return takes, nil
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
