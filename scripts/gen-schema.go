//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/motionforge/motionforge/pkg/project"
	"github.com/motionforge/motionforge/pkg/proof"
)

func main() {
	data, err := project.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/project-v1.json", data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/project-v1.json")

	proofData, err := proof.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating proof schema: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/proof-v1.json", proofData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/proof-v1.json")
}
