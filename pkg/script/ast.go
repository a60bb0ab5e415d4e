// Package script implements the motionforge animation DSL: a line-oriented
// statement language parsed into a tagged-union AST, semantically validated
// against a scene context, and compiled into a deterministic executable plan.
package script

import "fmt"

// Kind discriminates statement variants. The set is closed: every consumer
// (validator, compiler) switches exhaustively over it.
type Kind string

const (
	KindSelect    Kind = "select"
	KindDuration  Kind = "duration"
	KindFPS       Kind = "fps"
	KindLoop      Kind = "loop"
	KindLabel     Kind = "label"
	KindTake      Kind = "take"
	KindKey       Kind = "key"
	KindDeleteKey Kind = "deleteKey"
	KindBounce    Kind = "helper.bounce"
	KindRecoil    Kind = "helper.recoil"
)

// SourceLocation is a 1-based position in the script source.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Statement is one parsed statement. The Kind field selects which of the
// remaining fields are meaningful; statements are immutable once parsed.
type Statement struct {
	Kind Kind           `json:"kind"`
	Loc  SourceLocation `json:"loc"`

	// select
	Target string `json:"target,omitempty"`

	// duration, fps
	Number float64 `json:"number,omitempty"`

	// loop
	On bool `json:"on,omitempty"`

	// label
	Text string `json:"text,omitempty"`

	// take (Name), helper.bounce / helper.recoil (Amount)
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount,omitempty"`
	Start  float64 `json:"start,omitempty"`
	End    float64 `json:"end,omitempty"`

	// key, deleteKey
	Group string  `json:"group,omitempty"`
	Axis  string  `json:"axis,omitempty"`
	Time  float64 `json:"time,omitempty"`
	Value float64 `json:"value,omitempty"`
	Unit  string  `json:"unit,omitempty"`
	Ease  string  `json:"ease,omitempty"`
}

// PropertyPath returns the track path for key/deleteKey statements.
func (s *Statement) PropertyPath() string {
	return s.Group + "." + s.Axis
}

// Diagnostic is one parse or validation finding. Errors block compilation;
// warnings are advisory. Path is "line:N" for line-anchored findings or
// "script" for whole-script findings.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s at %s", d.Code, d.Message, d.Path)
}

// Diagnostic codes.
const (
	CodeUnsupportedStatement = "MF_SCRIPT_PARSE_UNSUPPORTED_STATEMENT"
	CodeInvalidDuration      = "MF_SCRIPT_INVALID_DURATION"
	CodeInvalidFPS           = "MF_SCRIPT_INVALID_FPS"
	CodeUnknownObject        = "MF_SCRIPT_UNKNOWN_OBJECT"
	CodeInvalidTime          = "MF_SCRIPT_INVALID_TIME"
	CodeInvalidValue         = "MF_SCRIPT_INVALID_VALUE"
	CodeTimeOutOfRange       = "MF_SCRIPT_TIME_OUT_OF_RANGE"
	CodeRangeOrder           = "MF_SCRIPT_RANGE_ORDER"
	CodeTakeName             = "MF_SCRIPT_TAKE_NAME"
	CodeTakeDuplicate        = "MF_SCRIPT_TAKE_DUPLICATE"
	CodeNoTargetObject       = "MF_SCRIPT_NO_TARGET_OBJECT"

	// Warning codes.
	CodeMultipleSelects     = "MF_SCRIPT_MULTIPLE_SELECTS"
	CodeNoDuration          = "MF_SCRIPT_NO_DURATION"
	CodeNoFPS               = "MF_SCRIPT_NO_FPS"
	CodeNoMutations         = "MF_SCRIPT_NO_MUTATIONS"
	CodeAssumedDegrees      = "MF_SCRIPT_ASSUMED_DEGREES"
)

func lineDiag(code string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    fmt.Sprintf("line:%d", line),
	}
}

func scriptDiag(code string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    "script",
	}
}
