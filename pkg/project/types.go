// Package project defines the serialized project document: the scene
// graph, animation clip, and assets as they travel through export,
// staged load, and bundling.
package project

// Document is the root of a serialized project.
type Document struct {
	Version int     `json:"version"`
	Scene   Scene   `json:"scene"`
	Clip    Clip    `json:"clip"`
	Assets  []Asset `json:"assets,omitempty"`
}

// Scene is the object graph plus the current selection.
type Scene struct {
	Objects          []Object `json:"objects"`
	SelectedObjectID string   `json:"selectedObjectId,omitempty"`
}

// Object is one scene node. Parenting is by id; transforms are xyz
// triples with rotation in radians.
type Object struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	ParentID    string     `json:"parentId,omitempty"`
	Position    [3]float64 `json:"position"`
	Rotation    [3]float64 `json:"rotation"`
	Scale       [3]float64 `json:"scale"`
	UserCreated bool       `json:"userCreated,omitempty"`
}

// Clip is the animation timeline.
type Clip struct {
	DurationSec float64 `json:"durationSec"`
	FPS         float64 `json:"fps,omitempty"`
	Loop        bool    `json:"loop,omitempty"`
	Tracks      []Track `json:"tracks,omitempty"`
	Takes       []Take  `json:"takes,omitempty"`
}

// Track holds the keyframes of one (object, property) pair, sorted by
// time. Tracks are exported sorted by (objectId, propertyPath) so that
// identical state always serializes to identical bytes.
type Track struct {
	ObjectID     string `json:"objectId"`
	PropertyPath string `json:"propertyPath"`
	Keys         []Key  `json:"keys"`
}

// Key is one keyframe.
type Key struct {
	Time          float64 `json:"time"`
	Value         float64 `json:"value"`
	Interpolation string  `json:"interpolation,omitempty"`
}

// Take is a named sub-range of the clip.
type Take struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Asset is an imported resource referenced by the scene.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri,omitempty"`
}
