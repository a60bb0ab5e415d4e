package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionforge/pkg/runtime"
)

var traceVerifyCmd = &cobra.Command{
	Use:   "verify [events.jsonl]",
	Short: "Verify event trace integrity (hash chain + ordering)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceVerify,
}

func runTraceVerify(cmd *cobra.Command, args []string) error {
	result, err := runtime.VerifyTraceFile(args[0])
	if err != nil {
		return err
	}

	if !result.Valid {
		fmt.Printf("✗ Chain broken at event %d\n", result.BrokenAt)
		if result.Error != "" {
			fmt.Printf("  %s\n", result.Error)
		}
		return fmt.Errorf("chain verification failed")
	}

	fmt.Printf("✓ Chain integrity: %d events, no breaks\n", result.EventCount)
	if result.ChainHash != "" {
		fmt.Printf("  chain hash: %s\n", result.ChainHash)
	}
	return nil
}

func init() {
	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Event trace tools",
	}
	traceCmd.AddCommand(traceVerifyCmd)
	rootCmd.AddCommand(traceCmd)
}
