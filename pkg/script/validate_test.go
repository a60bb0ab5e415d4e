package script

import "testing"

func diagCodes(diags []Diagnostic) []string {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

func hasCode(diags []Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_UnknownObject(t *testing.T) {
	ctx := Context{AvailableObjects: []ObjectRef{{ID: "obj_cube_1", Name: "Cube"}}}
	result := Validate(`select "Sphere"`, ctx)
	if !hasCode(result.Errors, CodeUnknownObject) {
		t.Errorf("expected %s, got %v", CodeUnknownObject, diagCodes(result.Errors))
	}
}

func TestValidate_SelectByNameCaseInsensitive(t *testing.T) {
	ctx := Context{AvailableObjects: []ObjectRef{{ID: "obj_cube_1", Name: "Cube"}}}
	result := Validate(`select "cube"`, ctx)
	if hasCode(result.Errors, CodeUnknownObject) {
		t.Errorf("case-insensitive name match should resolve, got %v", diagCodes(result.Errors))
	}
}

// Range checks use the duration in effect at the statement's position:
// a key placed before any duration declaration is not range-checked,
// while the same key after `duration 2` is.
func TestValidate_DurationDeclaredAfterKey(t *testing.T) {
	src := `key position y at 3 = 1
duration 2
key position x at 3 = 1`

	result := Validate(src, Context{})
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %v", diagCodes(result.Errors))
	}
	if result.Errors[0].Code != CodeTimeOutOfRange || result.Errors[0].Path != "line:3" {
		t.Errorf("expected %s at line:3, got %s at %s",
			CodeTimeOutOfRange, result.Errors[0].Code, result.Errors[0].Path)
	}
}

func TestValidate_DefaultDurationBoundsKeys(t *testing.T) {
	ctx := Context{Defaults: Defaults{DurationSec: 1}}
	result := Validate("key position y at 2 = 1", ctx)
	if !hasCode(result.Errors, CodeTimeOutOfRange) {
		t.Errorf("expected %s, got %v", CodeTimeOutOfRange, diagCodes(result.Errors))
	}
}

func TestValidate_InvalidDuration(t *testing.T) {
	result := Validate("duration 0", Context{})
	if !hasCode(result.Errors, CodeInvalidDuration) {
		t.Errorf("expected %s, got %v", CodeInvalidDuration, diagCodes(result.Errors))
	}
}

func TestValidate_InvalidFPS(t *testing.T) {
	result := Validate("fps 0", Context{})
	if !hasCode(result.Errors, CodeInvalidFPS) {
		t.Errorf("expected %s, got %v", CodeInvalidFPS, diagCodes(result.Errors))
	}
}

func TestValidate_TakeBeyondDuration(t *testing.T) {
	src := "duration 2\ntake \"Outro\" from 1 to 3"
	result := Validate(src, Context{})
	if !hasCode(result.Errors, CodeTimeOutOfRange) {
		t.Errorf("expected %s, got %v", CodeTimeOutOfRange, diagCodes(result.Errors))
	}
}

func TestValidate_TakeRangeOrder(t *testing.T) {
	result := Validate(`take "Intro" from 2 to 1`, Context{})
	if !hasCode(result.Errors, CodeRangeOrder) {
		t.Errorf("expected %s, got %v", CodeRangeOrder, diagCodes(result.Errors))
	}
}

func TestValidate_TakeDuplicateNameNormalized(t *testing.T) {
	src := `duration 4
take "Intro" from 0 to 1
take " intro " from 1 to 2`

	result := Validate(src, Context{})
	if !hasCode(result.Errors, CodeTakeDuplicate) {
		t.Errorf("expected %s, got %v", CodeTakeDuplicate, diagCodes(result.Errors))
	}
}

func TestValidate_Warnings(t *testing.T) {
	src := `select "A"
select "B"
key rotation x at 0 = 45`

	result := Validate(src, Context{})
	if !result.Valid() {
		t.Fatalf("expected no errors, got %v", diagCodes(result.Errors))
	}
	for _, code := range []string{CodeMultipleSelects, CodeNoDuration, CodeNoFPS, CodeAssumedDegrees} {
		if !hasCode(result.Warnings, code) {
			t.Errorf("expected warning %s, got %v", code, diagCodes(result.Warnings))
		}
	}
}

func TestValidate_NoMutationsWarning(t *testing.T) {
	result := Validate("duration 2\nfps 30", Context{})
	if !hasCode(result.Warnings, CodeNoMutations) {
		t.Errorf("expected %s, got %v", CodeNoMutations, diagCodes(result.Warnings))
	}
}

func TestValidate_ExplicitDegreesNoWarning(t *testing.T) {
	result := Validate("duration 2\nfps 30\nkey rotation x at 0 = 45 deg", Context{})
	if hasCode(result.Warnings, CodeAssumedDegrees) {
		t.Errorf("explicit deg unit should not warn, got %v", diagCodes(result.Warnings))
	}
}
