// Package main provides the mf-mcp binary — MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	mfmcp "github.com/motionforge/motionforge/pkg/mcp"
)

var version = "dev"

func main() {
	s := mfmcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
