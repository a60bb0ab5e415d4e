// Package planner turns free-text goals into executable plans via a
// closed table of named recipes. The table is hand-authored and not
// extensible at runtime; matching is plain substring matching, tried in
// table order.
package planner

import (
	"math"

	"github.com/motionforge/motionforge/pkg/plan"
)

// RecipeDefinition is one entry of the closed recipe table.
type RecipeDefinition struct {
	ID                 string   `json:"id"`
	Label              string   `json:"label"`
	TriggerPhrases     []string `json:"triggerPhrases"`
	DefaultDurationSec float64  `json:"defaultDurationSec"`
	TouchedTracks      []string `json:"touchedTracks"`
	LoopFriendly       bool     `json:"loopFriendly"`

	// EnabledWhen is a pure boolean expression over the scene snapshot
	// (env: objects, selected). A recipe whose guard evaluates false is
	// skipped during matching.
	EnabledWhen string `json:"enabledWhen,omitempty"`

	expand func(objectID string, start, end float64) []plan.KeyframeRecord
}

// Recipes is the table, in matching priority order.
var Recipes = []RecipeDefinition{
	{
		ID:                 "spin",
		Label:              "Spin",
		TriggerPhrases:     []string{"spin", "turn around", "rotate"},
		DefaultDurationSec: 2.0,
		TouchedTracks:      []string{"rotation.y"},
		LoopFriendly:       true,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandSpin,
	},
	{
		ID:                 "bounce",
		Label:              "Bounce",
		TriggerPhrases:     []string{"bounce", "hop", "jump"},
		DefaultDurationSec: 1.2,
		TouchedTracks:      []string{"position.y", "scale.x", "scale.y"},
		LoopFriendly:       true,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandBounceRecipe,
	},
	{
		ID:                 "idle",
		Label:              "Idle",
		TriggerPhrases:     []string{"idle", "breathe", "sway"},
		DefaultDurationSec: 2.0,
		TouchedTracks:      []string{"position.y", "scale.y"},
		LoopFriendly:       true,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandIdle,
	},
	{
		ID:                 "recoil",
		Label:              "Recoil",
		TriggerPhrases:     []string{"recoil", "flinch", "knock back"},
		DefaultDurationSec: 0.4,
		TouchedTracks:      []string{"position.z", "rotation.x"},
		LoopFriendly:       false,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandRecoilRecipe,
	},
	{
		ID:                 "pulse",
		Label:              "Pulse",
		TriggerPhrases:     []string{"pulse", "throb", "beat"},
		DefaultDurationSec: 1.0,
		TouchedTracks:      []string{"scale.x", "scale.y", "scale.z"},
		LoopFriendly:       true,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandPulse,
	},
	{
		ID:                 "shake",
		Label:              "Shake",
		TriggerPhrases:     []string{"shake", "tremble", "wobble"},
		DefaultDurationSec: 0.6,
		TouchedTracks:      []string{"position.x"},
		LoopFriendly:       false,
		EnabledWhen:        `len(objects) > 0`,
		expand:             expandShake,
	},
	{
		ID:                 "orbit",
		Label:              "Orbit",
		TriggerPhrases:     []string{"orbit", "circle around"},
		DefaultDurationSec: 3.0,
		TouchedTracks:      []string{"position.x", "position.z"},
		LoopFriendly:       true,
		// Orbiting needs something to orbit around.
		EnabledWhen: `len(objects) >= 2`,
		expand:      expandOrbit,
	},
}

func expandSpin(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	return []plan.KeyframeRecord{
		rec(objectID, "rotation.y", at(0), 0, "linear"),
		rec(objectID, "rotation.y", at(0.5), math.Pi, "linear"),
		rec(objectID, "rotation.y", at(1.0), 2*math.Pi, "linear"),
	}
}

func expandBounceRecipe(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	const amp = 0.6
	return []plan.KeyframeRecord{
		rec(objectID, "position.y", at(0), 0, "easeOut"),
		rec(objectID, "position.y", at(0.25), amp, "easeIn"),
		rec(objectID, "position.y", at(0.5), 0, "easeOut"),
		rec(objectID, "position.y", at(0.8), amp*0.3, "easeIn"),
		rec(objectID, "position.y", at(1.0), 0, "linear"),
		rec(objectID, "scale.y", at(0), 1, "easeInOut"),
		rec(objectID, "scale.y", at(0.25), 1.15, "easeInOut"),
		rec(objectID, "scale.y", at(0.5), 0.85, "easeInOut"),
		rec(objectID, "scale.y", at(1.0), 1, "easeInOut"),
		rec(objectID, "scale.x", at(0), 1, "easeInOut"),
		rec(objectID, "scale.x", at(0.25), 0.9, "easeInOut"),
		rec(objectID, "scale.x", at(0.5), 1.1, "easeInOut"),
		rec(objectID, "scale.x", at(1.0), 1, "easeInOut"),
	}
}

func expandIdle(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	return []plan.KeyframeRecord{
		rec(objectID, "position.y", at(0), 0, "easeInOut"),
		rec(objectID, "position.y", at(0.5), 0.05, "easeInOut"),
		rec(objectID, "position.y", at(1.0), 0, "easeInOut"),
		rec(objectID, "scale.y", at(0), 1, "easeInOut"),
		rec(objectID, "scale.y", at(0.5), 1.02, "easeInOut"),
		rec(objectID, "scale.y", at(1.0), 1, "easeInOut"),
	}
}

func expandRecoilRecipe(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	const distance = 0.4
	pitch := 0.15 * math.Max(0.5, distance)
	return []plan.KeyframeRecord{
		rec(objectID, "position.z", at(0), 0, "easeOut"),
		rec(objectID, "position.z", at(0.2), -distance, "easeInOut"),
		rec(objectID, "position.z", at(1.0), 0, "easeInOut"),
		rec(objectID, "rotation.x", at(0), 0, "easeOut"),
		rec(objectID, "rotation.x", at(0.2), -pitch, "easeInOut"),
		rec(objectID, "rotation.x", at(1.0), 0, "easeInOut"),
	}
}

func expandPulse(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	var out []plan.KeyframeRecord
	for _, axis := range []string{"scale.x", "scale.y", "scale.z"} {
		out = append(out,
			rec(objectID, axis, at(0), 1, "easeInOut"),
			rec(objectID, axis, at(0.5), 1.12, "easeInOut"),
			rec(objectID, axis, at(1.0), 1, "easeInOut"),
		)
	}
	return out
}

func expandShake(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	const amp = 0.08
	return []plan.KeyframeRecord{
		rec(objectID, "position.x", at(0), 0, "linear"),
		rec(objectID, "position.x", at(0.2), -amp, "linear"),
		rec(objectID, "position.x", at(0.4), amp, "linear"),
		rec(objectID, "position.x", at(0.6), -amp*0.5, "linear"),
		rec(objectID, "position.x", at(0.8), amp*0.25, "linear"),
		rec(objectID, "position.x", at(1.0), 0, "linear"),
	}
}

func expandOrbit(objectID string, start, end float64) []plan.KeyframeRecord {
	at := rangeAt(start, end)
	const radius = 1.5
	return []plan.KeyframeRecord{
		rec(objectID, "position.x", at(0), radius, "easeInOut"),
		rec(objectID, "position.x", at(0.25), 0, "easeInOut"),
		rec(objectID, "position.x", at(0.5), -radius, "easeInOut"),
		rec(objectID, "position.x", at(0.75), 0, "easeInOut"),
		rec(objectID, "position.x", at(1.0), radius, "easeInOut"),
		rec(objectID, "position.z", at(0), 0, "easeInOut"),
		rec(objectID, "position.z", at(0.25), radius, "easeInOut"),
		rec(objectID, "position.z", at(0.5), 0, "easeInOut"),
		rec(objectID, "position.z", at(0.75), -radius, "easeInOut"),
		rec(objectID, "position.z", at(1.0), 0, "easeInOut"),
	}
}

func rangeAt(start, end float64) func(frac float64) float64 {
	r := end - start
	return func(frac float64) float64 { return start + r*frac }
}

func rec(objectID, path string, t, v float64, ease string) plan.KeyframeRecord {
	return plan.KeyframeRecord{
		ObjectID:      objectID,
		PropertyPath:  path,
		Time:          t,
		Value:         v,
		Interpolation: ease,
	}
}
