package planner

import "testing"

func TestDeriveTakesFromGoal_Sequenced(t *testing.T) {
	takes := DeriveTakesFromGoal("idle loop then recoil", 4)
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(takes))
	}
	if takes[0].ID != "take_idle" || takes[0].StartTime != 0 || takes[0].EndTime != 2 {
		t.Errorf("unexpected first take: %+v", takes[0])
	}
	if takes[1].ID != "take_recoil" || takes[1].StartTime != 2 || takes[1].EndTime != 2.4 {
		t.Errorf("unexpected second take: %+v", takes[1])
	}
}

func TestDeriveTakesFromGoal_ClampsToClip(t *testing.T) {
	takes := DeriveTakesFromGoal("idle then spin", 3)
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(takes))
	}
	if takes[1].EndTime != 3 {
		t.Errorf("second take should clamp to clip end, got %v", takes[1].EndTime)
	}
}

func TestDeriveTakesFromGoal_StopsAtClipEnd(t *testing.T) {
	takes := DeriveTakesFromGoal("idle then spin then bounce", 2)
	// Idle fills [0,2]; nothing is left for the remaining segments.
	if len(takes) != 1 {
		t.Fatalf("expected 1 take, got %d", len(takes))
	}
}

func TestDeriveTakesFromGoal_DuplicateRecipes(t *testing.T) {
	takes := DeriveTakesFromGoal("recoil then recoil", 4)
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(takes))
	}
	if takes[0].ID != "take_recoil" || takes[1].ID != "take_recoil_2" {
		t.Errorf("unexpected ids: %s, %s", takes[0].ID, takes[1].ID)
	}
	if takes[1].Name != "Recoil 2" {
		t.Errorf("unexpected name: %s", takes[1].Name)
	}
}

func TestDeriveTakesFromGoal_UnknownSegmentsSkipped(t *testing.T) {
	takes := DeriveTakesFromGoal("warm up then spin", 4)
	if len(takes) != 1 || takes[0].ID != "take_spin" {
		t.Fatalf("expected only the spin take, got %+v", takes)
	}
	if takes[0].StartTime != 0 {
		t.Errorf("skipped segments must not advance the cursor, got start %v", takes[0].StartTime)
	}
}

func TestTakeRecipeID(t *testing.T) {
	cases := map[string]string{
		"take_idle":     "idle",
		"take_idle_2":   "idle",
		"take_recoil_3": "recoil",
		"take_spin":     "spin",
	}
	for in, want := range cases {
		if got := takeRecipeID(in); got != want {
			t.Errorf("takeRecipeID(%q) = %q, want %q", in, got, want)
		}
	}
}
