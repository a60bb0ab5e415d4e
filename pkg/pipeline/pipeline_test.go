package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/proof"
)

const inputProject = `{
  "version": 1,
  "scene": {
    "objects": [
      {"id": "obj_cube_1", "name": "Hero", "kind": "cube",
       "position": [0, 0, 0], "rotation": [0, 0, 0], "scale": [1, 1, 1]}
    ],
    "selectedObjectId": "obj_cube_1"
  },
  "clip": {"durationSec": 5, "fps": 30}
}`

const testScript = `select "obj_cube_1"
duration 3
fps 24
key position y at 1 = 2`

func testGenerator() proof.Generator {
	return proof.Generator{Name: "motionforge", Version: "test"}
}

func TestRun_WithoutConfirmIsPreviewOnly(t *testing.T) {
	res, err := Run(Options{
		Script:    testScript,
		InputJSON: []byte(inputProject),
		Generator: testGenerator(),
	})
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("expected ErrConfirmRequired, got %v", err)
	}
	if res == nil || res.Plan == nil || res.Diff == nil || res.Proof == nil {
		t.Fatal("preview result must carry plan, diff and proof")
	}
	if res.Applied || len(res.ProjectJSON) != 0 {
		t.Error("nothing may be applied without confirm")
	}
	if !res.Proof.PreviewOnly {
		t.Error("proof must be marked preview-only")
	}
	if res.Proof.OutputHash != "" {
		t.Error("preview proof must carry no output hash")
	}
	if res.Diff.TotalAdded == 0 {
		t.Errorf("script inserts a key, diff should show it: %+v", res.Diff)
	}
}

func TestRun_ConfirmedScriptRun(t *testing.T) {
	outDir := t.TempDir()
	res, err := Run(Options{
		Script:    testScript,
		InputJSON: []byte(inputProject),
		Confirm:   true,
		Staged:    true,
		OutDir:    outDir,
		Generator: testGenerator(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applied {
		t.Fatal("confirmed run must apply")
	}
	if res.Proof.PreviewOnly {
		t.Error("applied proof must not be preview-only")
	}
	if res.Proof.OutputHash == "" || res.Proof.ChainHash == "" {
		t.Errorf("applied proof must hash output and chain: %+v", res.Proof)
	}

	for _, name := range []string{"proof.json", "run.yaml", "project.json", "events.jsonl", "bundle.zip"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	if err := proof.VerifyBundleDir(outDir); err != nil {
		t.Errorf("bundle should verify: %v", err)
	}
}

func TestRun_GoalPlan(t *testing.T) {
	res, err := Run(Options{
		Goal:        "bounce",
		InputJSON:   []byte(inputProject),
		Constraints: planner.Constraints{DurationSec: 2},
		Confirm:     true,
		Generator:   testGenerator(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan.Goal != "bounce" {
		t.Errorf("unexpected plan goal %q", res.Plan.Goal)
	}
	if !res.Applied {
		t.Error("goal run should apply when confirmed")
	}
}

func TestRun_TakesOverride(t *testing.T) {
	takes := []plan.Take{
		{ID: "take_custom", Name: "Custom", StartTime: 0, EndTime: 1},
	}
	res, err := Run(Options{
		Script:    testScript,
		InputJSON: []byte(inputProject),
		Takes:     takes,
		Confirm:   true,
		Generator: testGenerator(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Proof.Takes) != 1 || res.Proof.Takes[0].ID != "take_custom" {
		t.Errorf("explicit takes must reach the proof, got %+v", res.Proof.Takes)
	}
}

func TestRun_RequiresGoalOrScript(t *testing.T) {
	if _, err := Run(Options{Generator: testGenerator()}); err == nil {
		t.Error("expected an error without goal or script")
	}
}

func TestRun_BadScriptFailsBeforeApply(t *testing.T) {
	_, err := Run(Options{
		Script:    `select "obj_ghost"` + "\nkey position y at 1 = 2",
		InputJSON: []byte(inputProject),
		Confirm:   true,
		Generator: testGenerator(),
	})
	if err == nil {
		t.Fatal("expected compilation failure")
	}
	if errors.Is(err, ErrConfirmRequired) {
		t.Error("compile failures are not confirm gates")
	}
}

func TestRun_DeterministicProof(t *testing.T) {
	run := func() []byte {
		res, err := Run(Options{
			Script:    testScript,
			InputJSON: []byte(inputProject),
			Confirm:   true,
			Generator: testGenerator(),
		})
		if err != nil {
			t.Fatal(err)
		}
		data, err := res.Proof.MarshalCanonical()
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if string(run()) != string(run()) {
		t.Error("identical runs must produce byte-identical proofs")
	}
}

func TestParseTakesFlag(t *testing.T) {
	takes, err := ParseTakesFlag("Intro:0..1.5,Loop:1.5..3")
	if err != nil {
		t.Fatal(err)
	}
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %v", takes)
	}
	if takes[0].Name != "Intro" || takes[0].StartTime != 0 || takes[0].EndTime != 1.5 {
		t.Errorf("unexpected first take: %+v", takes[0])
	}
	if takes[1].Name != "Loop" || takes[1].StartTime != 1.5 || takes[1].EndTime != 3 {
		t.Errorf("unexpected second take: %+v", takes[1])
	}

	for _, bad := range []string{"NoRange", "X:2..1of", "X:a..b"} {
		if _, err := ParseTakesFlag(bad); err == nil {
			t.Errorf("%q should not parse", bad)
		}
	}
}
