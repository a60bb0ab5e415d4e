package runtime

import (
	"fmt"
	"strings"
)

// Error codes surfaced to callers. These are stable: automation matches
// on them, never on message text.
const (
	CodeConfirmRequired = "MF_ERR_CONFIRM_REQUIRED"
	CodeAmbiguousName   = "MF_ERR_AMBIGUOUS_NAME"
	CodeUnknownObject   = "MF_ERR_UNKNOWN_OBJECT"
	CodeUnknownAction   = "MF_ERR_UNKNOWN_ACTION"
	CodeInvalidInput    = "MF_ERR_INVALID_INPUT"
	CodeInvalidTake     = "MF_ERR_INVALID_TAKE"
	CodeHistoryEmpty    = "MF_ERR_HISTORY_EMPTY"
	CodeNoStagedLoad    = "MF_ERR_NO_STAGED_LOAD"
)

// Error is a typed runtime failure. Safety gates (confirm required,
// ambiguous name) are expected, recoverable conditions, so they carry a
// machine-readable code and, where useful, the candidate list instead of
// a guess.
type Error struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%s: %s (candidates: %s)", e.Code, e.Message, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errConfirmRequired(action string) *Error {
	return &Error{
		Code:    CodeConfirmRequired,
		Message: fmt.Sprintf("%s is destructive and requires input.confirm = true", action),
	}
}

func errInvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
