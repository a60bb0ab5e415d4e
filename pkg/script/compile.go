package script

import (
	"crypto/sha256"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/motionforge/motionforge/pkg/plan"
)

// fallbackDurationSec is used for the set-duration step when neither the
// script nor the context declares a clip duration.
const fallbackDurationSec = 5.0

// safetyKeyBudget is the keyframe churn above which apply requires an
// explicit confirm.
const safetyKeyBudget = 20

// ASTSummary counts parsed statements by kind.
type ASTSummary struct {
	Statements int            `json:"statements"`
	ByKind     map[string]int `json:"byKind,omitempty"`
}

// PlanSummary describes the compiled plan's clip-level effect.
type PlanSummary struct {
	TargetObjectID string  `json:"targetObjectId,omitempty"`
	DurationSec    float64 `json:"durationSec"`
	FPS            float64 `json:"fps,omitempty"`
	Loop           bool    `json:"loop"`
	InsertCount    int     `json:"insertCount"`
	DeleteCount    int     `json:"deleteCount"`
	TakeCount      int     `json:"takeCount"`
}

// CompiledPlan is the compiler output. When OK is false, Steps is empty
// and Errors explains why; compilation never partially emits a plan.
type CompiledPlan struct {
	OK          bool         `json:"ok"`
	ASTSummary  ASTSummary   `json:"astSummary"`
	PlanSummary PlanSummary  `json:"planSummary"`
	Plan        *plan.Plan   `json:"plan,omitempty"`
	Steps       []plan.Step  `json:"steps"`
	Warnings    []Diagnostic `json:"warnings,omitempty"`
	Safety      plan.Safety  `json:"safety"`
	Errors      []Diagnostic `json:"errors,omitempty"`
}

// Compile validates the script and lowers it into a deterministic plan.
// The output depends only on (source, ctx): record lists are stable-sorted
// by (objectId, propertyPath, time) so plan bytes do not depend on the
// order statements appeared in.
func Compile(source string, ctx Context) CompiledPlan {
	parsed := Parse(source)
	validation := Validate(source, ctx)

	out := CompiledPlan{
		ASTSummary: summarizeAST(parsed.AST),
		Warnings:   validation.Warnings,
		Errors:     validation.Errors,
	}
	if !validation.Valid() {
		return out
	}

	target := resolveTarget(parsed.AST, ctx)
	if target == "" && needsTarget(parsed.AST) {
		out.Errors = append(out.Errors, scriptDiag(CodeNoTargetObject,
			"script has keyframe statements but no object could be resolved"))
		return out
	}

	c := newClipBuild(ctx)
	for i := range parsed.AST {
		c.apply(&parsed.AST[i], target)
	}
	c.finish()

	out.PlanSummary = PlanSummary{
		TargetObjectID: target,
		DurationSec:    c.duration,
		FPS:            c.fps,
		Loop:           c.loop,
		InsertCount:    len(c.inserts),
		DeleteCount:    len(c.deletes),
		TakeCount:      len(c.takes),
	}
	out.Safety = assessSafety(len(c.inserts), len(c.deletes))
	out.Plan = emitPlan(source, target, c, out.Safety)
	out.Steps = out.Plan.Steps
	out.OK = true
	return out
}

// resolveTarget picks the single object every key/deleteKey in the script
// applies to: last select statement, else the current selection, else the
// lexicographically smallest available object id.
func resolveTarget(ast []Statement, ctx Context) string {
	for i := len(ast) - 1; i >= 0; i-- {
		if ast[i].Kind == KindSelect {
			if len(ctx.AvailableObjects) == 0 {
				// Nothing to resolve against; trust the script.
				return ast[i].Target
			}
			return resolveRef(ast[i].Target, ctx.AvailableObjects)
		}
	}
	if ctx.SelectedObjectID != "" {
		return ctx.SelectedObjectID
	}
	smallest := ""
	for _, o := range ctx.AvailableObjects {
		if smallest == "" || o.ID < smallest {
			smallest = o.ID
		}
	}
	return smallest
}

func needsTarget(ast []Statement) bool {
	for i := range ast {
		switch ast[i].Kind {
		case KindKey, KindDeleteKey, KindBounce, KindRecoil:
			return true
		}
	}
	return false
}

// clipBuild accumulates the clip-level outcome of walking the statements.
type clipBuild struct {
	duration float64
	fps      float64
	loop     bool
	inserts  []plan.KeyframeRecord
	deletes  []plan.KeyRef
	takes    []plan.Take
	takeSeq  int
}

func newClipBuild(ctx Context) *clipBuild {
	c := &clipBuild{}
	if ctx.Defaults.DurationSec > 0 {
		c.duration = ctx.Defaults.DurationSec
	}
	if ctx.Defaults.FPS > 0 {
		c.fps = ctx.Defaults.FPS
	}
	return c
}

func (c *clipBuild) apply(s *Statement, target string) {
	switch s.Kind {
	case KindDuration:
		c.duration = s.Number
	case KindFPS:
		c.fps = s.Number
	case KindLoop:
		c.loop = s.On
	case KindKey:
		value := s.Value
		if s.Group == "rotation" {
			value = value * math.Pi / 180
		}
		c.inserts = append(c.inserts, plan.KeyframeRecord{
			ObjectID:      target,
			PropertyPath:  s.PropertyPath(),
			Time:          s.Time,
			Value:         value,
			Interpolation: s.Ease,
		})
	case KindDeleteKey:
		c.deletes = append(c.deletes, plan.KeyRef{
			ObjectID:     target,
			PropertyPath: s.PropertyPath(),
			Time:         s.Time,
		})
	case KindBounce:
		c.inserts = append(c.inserts, expandBounce(target, s.Amount, s.Start, s.End)...)
	case KindRecoil:
		c.inserts = append(c.inserts, expandRecoil(target, s.Amount, s.Start, s.End)...)
	case KindTake:
		c.takeSeq++
		c.takes = append(c.takes, plan.Take{
			ID:        fmt.Sprintf("take_%02d_%s", c.takeSeq, slugify(s.Name)),
			Name:      strings.TrimSpace(s.Name),
			StartTime: s.Start,
			EndTime:   s.End,
		})
	}
}

// finish sorts the accumulated records into their canonical order. This is
// the reproducibility anchor for downstream hashing.
func (c *clipBuild) finish() {
	if c.duration <= 0 {
		c.duration = fallbackDurationSec
	}
	sort.SliceStable(c.inserts, func(i, j int) bool {
		a, b := c.inserts[i], c.inserts[j]
		if a.ObjectID != b.ObjectID {
			return a.ObjectID < b.ObjectID
		}
		if a.PropertyPath != b.PropertyPath {
			return a.PropertyPath < b.PropertyPath
		}
		return a.Time < b.Time
	})
	sort.SliceStable(c.deletes, func(i, j int) bool {
		a, b := c.deletes[i], c.deletes[j]
		if a.ObjectID != b.ObjectID {
			return a.ObjectID < b.ObjectID
		}
		if a.PropertyPath != b.PropertyPath {
			return a.PropertyPath < b.PropertyPath
		}
		return a.Time < b.Time
	})
	sort.SliceStable(c.takes, func(i, j int) bool {
		a, b := c.takes[i], c.takes[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}

func assessSafety(inserts, deletes int) plan.Safety {
	var s plan.Safety
	if deletes > 0 {
		s.RequiresConfirm = true
		s.Reasons = append(s.Reasons, fmt.Sprintf("removes %d keyframe(s)", deletes))
	}
	if inserts+deletes > safetyKeyBudget {
		s.RequiresConfirm = true
		s.Reasons = append(s.Reasons, fmt.Sprintf("touches %d keyframes across the clip", inserts+deletes))
	}
	return s
}

// emitPlan lays out the steps in fixed pipeline order. Record categories
// with zero entries never produce an empty step.
func emitPlan(source, target string, c *clipBuild, safety plan.Safety) *plan.Plan {
	p := &plan.Plan{
		ID:     fmt.Sprintf("plan_script_%s", shortHash(source)),
		Safety: safety,
		Summary: fmt.Sprintf("%d insert(s), %d delete(s), %d take(s) on %s",
			len(c.inserts), len(c.deletes), len(c.takes), target),
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
		"confirm the target object and current clip state before mutating")
	add("set-duration", "Set clip duration", plan.StepMutate, "animation.setDuration",
		map[string]any{"seconds": c.duration, "fps": c.fps, "loop": c.loop},
		"establish the timeline the keyframes are placed on")
	if len(c.inserts) > 0 {
		add("insert-keys", "Insert keyframes", plan.StepMutate, "animation.insertRecords",
			map[string]any{"records": keyframeInputs(c.inserts)},
			"write the script's keyframes in canonical order")
	}
	if len(c.deletes) > 0 {
		add("delete-keys", "Delete keyframes", plan.StepMutate, "animation.removeKeys",
			map[string]any{"keys": keyRefInputs(c.deletes)},
			"remove the keyframes the script marked for deletion")
	}
	if len(c.takes) > 0 {
		add("set-takes", "Set takes", plan.StepMutate, "animation.setTakes",
			map[string]any{"takes": takeInputs(c.takes)},
			"declare the named sub-ranges used for export")
	}
	return p
}

func keyframeInputs(records []plan.KeyframeRecord) []map[string]any {
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

func keyRefInputs(refs []plan.KeyRef) []map[string]any {
	out := make([]map[string]any, 0, len(refs))
	for _, r := range refs {
		out = append(out, map[string]any{
			"objectId":     r.ObjectID,
			"propertyPath": r.PropertyPath,
			"time":         r.Time,
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

func summarizeAST(ast []Statement) ASTSummary {
	s := ASTSummary{Statements: len(ast)}
	if len(ast) > 0 {
		s.ByKind = make(map[string]int)
		for i := range ast {
			s.ByKind[string(ast[i].Kind)]++
		}
	}
	return s
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(slug, "_")
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum[:4])
}
