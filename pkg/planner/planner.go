package planner

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/motionforge/motionforge/pkg/plan"
)

// Error codes.
const (
	CodeUnsupportedGoal = "MF_ERR_UNSUPPORTED_GOAL"
	CodeInvalidDuration = "MF_ERR_INVALID_DURATION"
	CodeInvalidFPS      = "MF_ERR_INVALID_FPS"
)

// Error is a typed planner failure carrying a stable machine-readable
// code and, for unsupported goals, actionable suggestions.
type Error struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// SceneObject is one object of the scene snapshot the planner sees.
type SceneObject struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Snapshot is the read-only scene view plans are generated against.
type Snapshot struct {
	Objects          []SceneObject `json:"objects"`
	SelectedObjectID string        `json:"selectedObjectId,omitempty"`
}

// Constraints narrow the generated plan. Zero values mean "unset".
type Constraints struct {
	DurationSec float64 `json:"durationSec,omitempty"`
	FPS         float64 `json:"fps,omitempty"`
}

// Input is one planning request.
type Input struct {
	Goal        string      `json:"goal"`
	Constraints Constraints `json:"constraints,omitempty"`
}

// Issue is one constraint problem. Validation returns all issues at once
// rather than stopping at the first.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateConstraints checks the constraint values. Pure: reports issues
// in fixed order (duration, then fps) and never fails.
func ValidateConstraints(c Constraints) []Issue {
	var issues []Issue
	if c.DurationSec != 0 && (!finite(c.DurationSec) || c.DurationSec <= 0) {
		issues = append(issues, Issue{
			Code:    CodeInvalidDuration,
			Field:   "durationSec",
			Message: fmt.Sprintf("durationSec must be a positive finite number, got %v", c.DurationSec),
		})
	}
	if c.FPS != 0 && (!finite(c.FPS) || c.FPS <= 0) {
		issues = append(issues, Issue{
			Code:    CodeInvalidFPS,
			Field:   "fps",
			Message: fmt.Sprintf("fps must be a positive finite number, got %v", c.FPS),
		})
	}
	return issues
}

// Match finds the first recipe whose trigger phrases occur in the goal,
// trying definitions in table order. Recipes whose enabledWhen guard
// evaluates false against the snapshot are skipped.
func Match(goal string, snap Snapshot) (*RecipeDefinition, *Error) {
	needle := strings.ToLower(strings.TrimSpace(goal))
	for i := range Recipes {
		r := &Recipes[i]
		if !recipeEnabled(r, snap) {
			continue
		}
		for _, phrase := range r.TriggerPhrases {
			if strings.Contains(needle, phrase) {
				return r, nil
			}
		}
	}
	return nil, &Error{
		Code:        CodeUnsupportedGoal,
		Message:     fmt.Sprintf("no recipe matches goal %q", goal),
		Suggestions: suggestions(),
	}
}

// suggestions lists one representative trigger phrase per recipe.
func suggestions() []string {
	out := make([]string, 0, len(Recipes))
	for i := range Recipes {
		out = append(out, Recipes[i].TriggerPhrases[0])
	}
	return out
}

// recipeEnabled evaluates a recipe's guard expression against the
// snapshot. Guards are pure: the same snapshot always yields the same
// answer. A guard that fails to compile or evaluate disables the recipe.
func recipeEnabled(r *RecipeDefinition, snap Snapshot) bool {
	if r.EnabledWhen == "" {
		return true
	}
	env := map[string]any{
		"objects":  snap.Objects,
		"selected": snap.SelectedObjectID,
	}
	prog, err := expr.Compile(r.EnabledWhen, expr.Env(env), expr.AsBool())
	if err != nil {
		return false
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return false
	}
	enabled, _ := out.(bool)
	return enabled
}

// GeneratePlan produces a deterministic plan for the goal. Identical
// (input, snapshot) pairs always yield byte-identical plans; there is no
// randomness, wall-clock, or environment dependence anywhere below.
func GeneratePlan(input Input, snap Snapshot) (*plan.Plan, error) {
	if issues := ValidateConstraints(input.Constraints); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, iss := range issues {
			msgs[i] = iss.Message
		}
		return nil, &Error{Code: issues[0].Code, Message: strings.Join(msgs, "; ")}
	}

	primary, merr := Match(input.Goal, snap)
	if merr != nil {
		return nil, merr
	}

	target := resolveObject(snap)
	if target == "" {
		// Guards require at least one object, so this is unreachable for
		// the built-in table; kept for custom guard safety.
		return nil, &Error{
			Code:        CodeUnsupportedGoal,
			Message:     "scene has no objects to animate",
			Suggestions: suggestions(),
		}
	}

	duration := input.Constraints.DurationSec
	if duration <= 0 {
		duration = primary.DefaultDurationSec
	}

	takes := DeriveTakesFromGoal(input.Goal, duration)
	var inserts []plan.KeyframeRecord
	if len(takes) > 0 {
		for _, t := range takes {
			if r := recipeByID(takeRecipeID(t.ID)); r != nil {
				inserts = append(inserts, r.expand(target, t.StartTime, t.EndTime)...)
			}
		}
	} else {
		inserts = primary.expand(target, 0, duration)
	}
	sortRecords(inserts)

	p := &plan.Plan{
		ID:   fmt.Sprintf("plan_goal_%s", goalHash(input, snap)),
		Goal: input.Goal,
		Summary: fmt.Sprintf("%s: %d keyframe(s) on %s over %vs",
			primary.Label, len(inserts), target, duration),
	}
	if len(inserts) > safetyKeyBudget {
		p.Safety = plan.Safety{
			RequiresConfirm: true,
			Reasons:         []string{fmt.Sprintf("touches %d keyframes across the clip", len(inserts))},
		}
	}

	n := 0
	add := func(name, label string, t plan.StepType, action string, input map[string]any, rationale string) {
		n++
		p.Steps = append(p.Steps, plan.Step{
			ID:        fmt.Sprintf("s%02d-%s", n, name),
			Label:     label,
			Type:      t,
			Command:   plan.Command{Action: action, Input: input},
			Rationale: rationale,
		})
	}

	add("inspect-scene", "Inspect scene", plan.StepInspect, "scene.inspect", nil,
		fmt.Sprintf("recipe %q resolved target %s", primary.ID, target))
	add("set-duration", "Set clip duration", plan.StepMutate, "animation.setDuration",
		map[string]any{"seconds": duration, "fps": input.Constraints.FPS, "loop": primary.LoopFriendly},
		"size the timeline to the recipe")
	add("insert-keys", "Insert keyframes", plan.StepMutate, "animation.insertRecords",
		map[string]any{"records": recordInputs(inserts)},
		fmt.Sprintf("apply the %q pattern", primary.ID))
	if len(takes) > 0 {
		add("set-takes", "Set takes", plan.StepMutate, "animation.setTakes",
			map[string]any{"takes": takeInputs(takes)},
			"one take per goal segment")
	}
	return p, nil
}

const safetyKeyBudget = 20

func resolveObject(snap Snapshot) string {
	if snap.SelectedObjectID != "" {
		return snap.SelectedObjectID
	}
	smallest := ""
	for _, o := range snap.Objects {
		if smallest == "" || o.ID < smallest {
			smallest = o.ID
		}
	}
	return smallest
}

func recipeByID(id string) *RecipeDefinition {
	for i := range Recipes {
		if Recipes[i].ID == id {
			return &Recipes[i]
		}
	}
	return nil
}

// takeRecipeID recovers the recipe id from a derived take id
// ("take_idle" or "take_idle_2").
func takeRecipeID(takeID string) string {
	id := strings.TrimPrefix(takeID, "take_")
	if i := strings.LastIndex(id, "_"); i > 0 {
		if suffix := id[i+1:]; suffix != "" && strings.Trim(suffix, "0123456789") == "" {
			id = id[:i]
		}
	}
	return id
}

func sortRecords(records []plan.KeyframeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ObjectID != b.ObjectID {
			return a.ObjectID < b.ObjectID
		}
		if a.PropertyPath != b.PropertyPath {
			return a.PropertyPath < b.PropertyPath
		}
		return a.Time < b.Time
	})
}

func recordInputs(records []plan.KeyframeRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]any{
			"objectId":      r.ObjectID,
			"propertyPath":  r.PropertyPath,
			"time":          r.Time,
			"value":         r.Value,
			"interpolation": r.Interpolation,
		})
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

func goalHash(input Input, snap Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%v|%v|%s|", strings.ToLower(strings.TrimSpace(input.Goal)),
		input.Constraints.DurationSec, input.Constraints.FPS, snap.SelectedObjectID)
	for _, o := range snap.Objects {
		fmt.Fprintf(&b, "%s,", o.ID)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:4])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
