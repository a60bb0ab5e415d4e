package planner

import (
	"fmt"
	"strings"

	"github.com/motionforge/motionforge/pkg/plan"
)

// DeriveTakesFromGoal splits the goal on "then" into segments, matches
// each segment against the recipe table by substring, and lays the
// resulting takes head to tail: each take spans its recipe's default
// duration starting where the previous take ended, clamped to the clip
// duration. Segments that match no recipe are skipped.
//
// "idle loop then recoil" with a 4s clip yields Idle [0,2] and
// Recoil [2,2.4].
func DeriveTakesFromGoal(goal string, clipDuration float64) []plan.Take {
	var takes []plan.Take
	cursor := 0.0
	seen := map[string]int{}

	for _, segment := range strings.Split(strings.ToLower(goal), " then ") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		r := matchSegment(segment)
		if r == nil {
			continue
		}
		if clipDuration > 0 && cursor >= clipDuration {
			break
		}
		end := cursor + r.DefaultDurationSec
		if clipDuration > 0 && end > clipDuration {
			end = clipDuration
		}

		seen[r.ID]++
		id := "take_" + r.ID
		name := r.Label
		if n := seen[r.ID]; n > 1 {
			id = fmt.Sprintf("%s_%d", id, n)
			name = fmt.Sprintf("%s %d", name, n)
		}

		takes = append(takes, plan.Take{
			ID:        id,
			Name:      name,
			StartTime: cursor,
			EndTime:   end,
		})
		cursor = end
	}
	return takes
}

// matchSegment matches one goal segment against the table in order,
// ignoring applicability guards: take derivation is a pure function of
// the goal text and clip duration only.
func matchSegment(segment string) *RecipeDefinition {
	for i := range Recipes {
		for _, phrase := range Recipes[i].TriggerPhrases {
			if strings.Contains(segment, phrase) {
				return &Recipes[i]
			}
		}
	}
	return nil
}
