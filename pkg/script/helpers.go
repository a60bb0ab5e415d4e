package script

import (
	"math"

	"github.com/motionforge/motionforge/pkg/plan"
)

// Helper templates expand into concrete keyframe sets. The expansions are
// fixed parametric functions of (magnitude, startTime, endTime) so that a
// given helper statement always yields the same records.

// expandBounce produces a squash-and-stretch hop on position.y, scale.y
// and scale.x.
func expandBounce(objectID string, amplitude, start, end float64) []plan.KeyframeRecord {
	r := end - start
	at := func(frac float64) float64 { return start + r*frac }

	return []plan.KeyframeRecord{
		// rise, apex, fall, small rebound, settle
		{ObjectID: objectID, PropertyPath: "position.y", Time: at(0), Value: 0, Interpolation: "easeOut"},
		{ObjectID: objectID, PropertyPath: "position.y", Time: at(0.25), Value: amplitude, Interpolation: "easeIn"},
		{ObjectID: objectID, PropertyPath: "position.y", Time: at(0.5), Value: 0, Interpolation: "easeOut"},
		{ObjectID: objectID, PropertyPath: "position.y", Time: at(0.8), Value: amplitude * 0.3, Interpolation: "easeIn"},
		{ObjectID: objectID, PropertyPath: "position.y", Time: at(1.0), Value: 0, Interpolation: "linear"},

		{ObjectID: objectID, PropertyPath: "scale.y", Time: at(0), Value: 1, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.y", Time: at(0.25), Value: 1.15, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.y", Time: at(0.5), Value: 0.85, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.y", Time: at(1.0), Value: 1, Interpolation: "easeInOut"},

		{ObjectID: objectID, PropertyPath: "scale.x", Time: at(0), Value: 1, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.x", Time: at(0.25), Value: 0.9, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.x", Time: at(0.5), Value: 1.1, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "scale.x", Time: at(1.0), Value: 1, Interpolation: "easeInOut"},
	}
}

// expandRecoil produces a 3-key impulse-and-return on position.z and
// rotation.x. Rotation magnitude scales with max(0.5, distance).
func expandRecoil(objectID string, distance, start, end float64) []plan.KeyframeRecord {
	r := end - start
	at := func(frac float64) float64 { return start + r*frac }
	pitch := 0.15 * math.Max(0.5, distance)

	return []plan.KeyframeRecord{
		{ObjectID: objectID, PropertyPath: "position.z", Time: at(0), Value: 0, Interpolation: "easeOut"},
		{ObjectID: objectID, PropertyPath: "position.z", Time: at(0.2), Value: -distance, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "position.z", Time: at(1.0), Value: 0, Interpolation: "easeInOut"},

		{ObjectID: objectID, PropertyPath: "rotation.x", Time: at(0), Value: 0, Interpolation: "easeOut"},
		{ObjectID: objectID, PropertyPath: "rotation.x", Time: at(0.2), Value: -pitch, Interpolation: "easeInOut"},
		{ObjectID: objectID, PropertyPath: "rotation.x", Time: at(1.0), Value: 0, Interpolation: "easeInOut"},
	}
}
