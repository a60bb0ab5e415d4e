package script

import (
	"regexp"
	"strconv"
	"strings"
)

// num is the shared numeric literal pattern: optional sign, optional
// decimal point.
const num = `[-+]?(?:\d+(?:\.\d+)?|\.\d+)`

const easeModes = `linear|easeIn|easeOut|easeInOut`

// Grammar patterns, tried in this order; the first match wins.
var (
	reSelect    = regexp.MustCompile(`^select\s+"([^"]+)"$`)
	reDuration  = regexp.MustCompile(`^duration\s+(` + num + `)$`)
	reFPS       = regexp.MustCompile(`^fps\s+(` + num + `)$`)
	reLoop      = regexp.MustCompile(`^loop\s+(on|off)$`)
	reLabel     = regexp.MustCompile(`^label\s+"([^"]*)"$`)
	reTake      = regexp.MustCompile(`^take\s+"([^"]+)"\s+from\s+(` + num + `)\s+to\s+(` + num + `)$`)
	reKey       = regexp.MustCompile(`^key\s+(position|rotation|scale)\s+([xyz])\s+at\s+(` + num + `)\s*=\s*(` + num + `)(?:\s+(deg))?(?:\s+ease\s+(` + easeModes + `))?$`)
	reDeleteKey = regexp.MustCompile(`^delete\s+key\s+(position|rotation|scale)\s+([xyz])\s+at\s+(` + num + `)$`)
	reBounce    = regexp.MustCompile(`^bounce\s+amplitude\s+(` + num + `)\s+at\s+(` + num + `)\.\.(` + num + `)$`)
	reRecoil    = regexp.MustCompile(`^recoil\s+distance\s+(` + num + `)\s+at\s+(` + num + `)\.\.(` + num + `)$`)
)

// ParseResult is the outcome of parsing a script. Errors accumulate per
// line; a bad line never aborts the rest of the parse.
type ParseResult struct {
	OK     bool         `json:"ok"`
	AST    []Statement  `json:"ast"`
	Errors []Diagnostic `json:"errors,omitempty"`
}

// Parse tokenizes a script line by line. Blank lines and comment lines
// (# or //) are skipped. Each remaining line is matched against the
// grammar patterns in fixed priority order.
func Parse(source string) ParseResult {
	result := ParseResult{}
	lines := strings.Split(source, "\n")

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		col := strings.Index(raw, trimmed) + 1
		loc := SourceLocation{Line: lineNo, Column: col}

		stmt, ok := matchStatement(trimmed, loc)
		if !ok {
			result.Errors = append(result.Errors,
				lineDiag(CodeUnsupportedStatement, lineNo, "unsupported statement: %q", trimmed))
			continue
		}
		result.AST = append(result.AST, stmt)
	}

	result.OK = len(result.Errors) == 0
	return result
}

func matchStatement(line string, loc SourceLocation) (Statement, bool) {
	if m := reSelect.FindStringSubmatch(line); m != nil {
		return Statement{Kind: KindSelect, Loc: loc, Target: m[1]}, true
	}
	if m := reDuration.FindStringSubmatch(line); m != nil {
		return Statement{Kind: KindDuration, Loc: loc, Number: parseNum(m[1])}, true
	}
	if m := reFPS.FindStringSubmatch(line); m != nil {
		return Statement{Kind: KindFPS, Loc: loc, Number: parseNum(m[1])}, true
	}
	if m := reLoop.FindStringSubmatch(line); m != nil {
		return Statement{Kind: KindLoop, Loc: loc, On: m[1] == "on"}, true
	}
	if m := reLabel.FindStringSubmatch(line); m != nil {
		return Statement{Kind: KindLabel, Loc: loc, Text: m[1]}, true
	}
	if m := reTake.FindStringSubmatch(line); m != nil {
		return Statement{
			Kind:  KindTake,
			Loc:   loc,
			Name:  m[1],
			Start: parseNum(m[2]),
			End:   parseNum(m[3]),
		}, true
	}
	if m := reKey.FindStringSubmatch(line); m != nil {
		ease := m[6]
		if ease == "" {
			ease = "linear"
		}
		return Statement{
			Kind:  KindKey,
			Loc:   loc,
			Group: m[1],
			Axis:  m[2],
			Time:  parseNum(m[3]),
			Value: parseNum(m[4]),
			Unit:  m[5],
			Ease:  ease,
		}, true
	}
	if m := reDeleteKey.FindStringSubmatch(line); m != nil {
		return Statement{
			Kind:  KindDeleteKey,
			Loc:   loc,
			Group: m[1],
			Axis:  m[2],
			Time:  parseNum(m[3]),
		}, true
	}
	if m := reBounce.FindStringSubmatch(line); m != nil {
		return Statement{
			Kind:   KindBounce,
			Loc:    loc,
			Amount: parseNum(m[1]),
			Start:  parseNum(m[2]),
			End:    parseNum(m[3]),
		}, true
	}
	if m := reRecoil.FindStringSubmatch(line); m != nil {
		return Statement{
			Kind:   KindRecoil,
			Loc:    loc,
			Amount: parseNum(m[1]),
			Start:  parseNum(m[2]),
			End:    parseNum(m[3]),
		}, true
	}
	return Statement{}, false
}

func parseNum(s string) float64 {
	// The grammar guarantees a valid literal.
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
