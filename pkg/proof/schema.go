package proof

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema exports the proof document schema (Draft 2020-12).
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Document{})
	s.ID = "https://github.com/motionforge/motionforge/schemas/proof-v1.json"
	s.Title = "motionforge proof document"
	s.Description = "Schema for canonical run proofs (hashes, diff summary, generator)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal proof schema: %w", err)
	}
	return data, nil
}
