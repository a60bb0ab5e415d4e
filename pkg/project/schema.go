package project

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// the project Document Go types.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Document{})
	s.ID = "https://github.com/motionforge/motionforge/schemas/project-v1.json"
	s.Title = "motionforge project document"
	s.Description = "Schema for serialized motionforge projects (scene, clip, assets)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project schema: %w", err)
	}
	return data, nil
}
