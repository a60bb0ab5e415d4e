package script

import (
	"math"
	"strings"
)

// ObjectRef names one scene object the script may select.
type ObjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Defaults are the clip values in effect before the script declares its own.
type Defaults struct {
	FPS         float64 `json:"fps,omitempty"`
	DurationSec float64 `json:"durationSec,omitempty"`
}

// Context carries the scene knowledge the validator and compiler check
// statements against.
type Context struct {
	Defaults         Defaults    `json:"defaults"`
	AvailableObjects []ObjectRef `json:"availableObjects,omitempty"`

	// SelectedObjectID is the externally supplied current selection,
	// used by the compiler when the script has no select statement.
	SelectedObjectID string `json:"selectedObjectId,omitempty"`
}

// ValidateResult separates blocking errors from advisory warnings.
type ValidateResult struct {
	Errors   []Diagnostic `json:"errors,omitempty"`
	Warnings []Diagnostic `json:"warnings,omitempty"`
}

// Valid reports whether compilation may proceed.
func (r *ValidateResult) Valid() bool { return len(r.Errors) == 0 }

// Validate re-parses the script and walks the AST once, left to right,
// carrying running state. Range checks are deliberately order-sensitive:
// a key's time is checked against whatever duration is in effect at that
// point in the file, since scripts are interpreted top to bottom.
func Validate(source string, ctx Context) ValidateResult {
	parsed := Parse(source)
	result := ValidateResult{Errors: parsed.Errors}
	result.Warnings = append(result.Warnings, validateAST(parsed.AST, ctx)...)
	result.Errors = append(result.Errors, astErrors(parsed.AST, ctx)...)
	return result
}

// walkState is the running declaration state carried across statements.
type walkState struct {
	duration    float64 // 0 = unknown
	fps         float64
	selects     int
	mutations   int
	takeNames   map[string]int // normalized name -> first line
	declaredDur bool
	declaredFPS bool
}

func newWalkState(ctx Context) *walkState {
	st := &walkState{takeNames: make(map[string]int)}
	if ctx.Defaults.DurationSec > 0 && !math.IsInf(ctx.Defaults.DurationSec, 0) {
		st.duration = ctx.Defaults.DurationSec
	}
	if ctx.Defaults.FPS > 0 && !math.IsInf(ctx.Defaults.FPS, 0) {
		st.fps = ctx.Defaults.FPS
	}
	return st
}

func astErrors(ast []Statement, ctx Context) []Diagnostic {
	var errs []Diagnostic
	st := newWalkState(ctx)

	for i := range ast {
		s := &ast[i]
		line := s.Loc.Line
		switch s.Kind {
		case KindSelect:
			st.selects++
			if len(ctx.AvailableObjects) > 0 && resolveRef(s.Target, ctx.AvailableObjects) == "" {
				errs = append(errs, lineDiag(CodeUnknownObject, line,
					"no object with id or name %q", s.Target))
			}

		case KindDuration:
			if !isFinite(s.Number) || s.Number <= 0 {
				errs = append(errs, lineDiag(CodeInvalidDuration, line,
					"duration must be a positive finite number, got %v", s.Number))
				continue
			}
			st.duration = s.Number
			st.declaredDur = true

		case KindFPS:
			if !isFinite(s.Number) || s.Number <= 0 {
				errs = append(errs, lineDiag(CodeInvalidFPS, line,
					"fps must be a positive finite number, got %v", s.Number))
				continue
			}
			st.fps = s.Number
			st.declaredFPS = true

		case KindLoop, KindLabel:
			// nothing to check

		case KindTake:
			st.mutations++
			name := strings.TrimSpace(s.Name)
			if name == "" {
				errs = append(errs, lineDiag(CodeTakeName, line, "take name must not be blank"))
			} else {
				norm := strings.ToLower(name)
				if first, dup := st.takeNames[norm]; dup {
					errs = append(errs, lineDiag(CodeTakeDuplicate, line,
						"take name %q already declared at line %d", name, first))
				} else {
					st.takeNames[norm] = line
				}
			}
			errs = append(errs, checkRange(st, s.Start, s.End, line)...)

		case KindKey:
			st.mutations++
			errs = append(errs, checkTime(st, s.Time, line)...)
			if !isFinite(s.Value) {
				errs = append(errs, lineDiag(CodeInvalidValue, line,
					"key value must be finite, got %v", s.Value))
			}

		case KindDeleteKey:
			st.mutations++
			errs = append(errs, checkTime(st, s.Time, line)...)

		case KindBounce, KindRecoil:
			st.mutations++
			if !isFinite(s.Amount) || s.Amount <= 0 {
				errs = append(errs, lineDiag(CodeInvalidValue, line,
					"helper magnitude must be a positive finite number, got %v", s.Amount))
			}
			errs = append(errs, checkRange(st, s.Start, s.End, line)...)
		}
	}

	return errs
}

func validateAST(ast []Statement, ctx Context) []Diagnostic {
	var warns []Diagnostic
	st := newWalkState(ctx)
	rotationAssumed := 0

	for i := range ast {
		s := &ast[i]
		switch s.Kind {
		case KindSelect:
			st.selects++
		case KindDuration:
			st.declaredDur = true
		case KindFPS:
			st.declaredFPS = true
		case KindTake, KindKey, KindDeleteKey, KindBounce, KindRecoil:
			st.mutations++
		}
		if s.Kind == KindKey && s.Group == "rotation" && s.Unit != "deg" {
			rotationAssumed++
			warns = append(warns, lineDiag(CodeAssumedDegrees, s.Loc.Line,
				"rotation key value assumed to be degrees; add 'deg' to make the unit explicit"))
		}
	}

	if st.selects > 1 {
		warns = append(warns, scriptDiag(CodeMultipleSelects,
			"%d select statements; only the last one takes effect", st.selects))
	}
	if !st.declaredDur && ctx.Defaults.DurationSec <= 0 {
		warns = append(warns, scriptDiag(CodeNoDuration,
			"no duration declared and no default provided"))
	}
	if !st.declaredFPS && ctx.Defaults.FPS <= 0 {
		warns = append(warns, scriptDiag(CodeNoFPS,
			"no fps declared and no default provided"))
	}
	if st.mutations == 0 {
		warns = append(warns, scriptDiag(CodeNoMutations,
			"script contains no mutating statements"))
	}
	return warns
}

// checkTime validates a single keyframe time against the duration in
// effect at this point in the script.
func checkTime(st *walkState, t float64, line int) []Diagnostic {
	if !isFinite(t) || t < 0 {
		return []Diagnostic{lineDiag(CodeInvalidTime, line,
			"time must be a non-negative finite number, got %v", t)}
	}
	if st.duration > 0 && t > st.duration {
		return []Diagnostic{lineDiag(CodeTimeOutOfRange, line,
			"time %v exceeds clip duration %v", t, st.duration)}
	}
	return nil
}

// checkRange validates a from..to pair.
func checkRange(st *walkState, start, end float64, line int) []Diagnostic {
	var errs []Diagnostic
	if !isFinite(start) || start < 0 {
		errs = append(errs, lineDiag(CodeInvalidTime, line,
			"range start must be a non-negative finite number, got %v", start))
		return errs
	}
	if !isFinite(end) {
		errs = append(errs, lineDiag(CodeInvalidTime, line,
			"range end must be finite, got %v", end))
		return errs
	}
	if start >= end {
		errs = append(errs, lineDiag(CodeRangeOrder, line,
			"range start %v must be before end %v", start, end))
		return errs
	}
	if st.duration > 0 && end > st.duration {
		errs = append(errs, lineDiag(CodeTimeOutOfRange, line,
			"range end %v exceeds clip duration %v", end, st.duration))
	}
	return errs
}

// resolveRef matches a select target against the available objects:
// exact id first, then exact name, then case-insensitive name.
func resolveRef(target string, objects []ObjectRef) string {
	for _, o := range objects {
		if o.ID == target {
			return o.ID
		}
	}
	for _, o := range objects {
		if o.Name == target {
			return o.ID
		}
	}
	lower := strings.ToLower(target)
	for _, o := range objects {
		if strings.ToLower(o.Name) == lower {
			return o.ID
		}
	}
	return ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
