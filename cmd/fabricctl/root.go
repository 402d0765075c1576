package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var addr string

var rootCmd = &cobra.Command{
	Use:   "fabricctl",
	Short: "Client for a running taskfabric daemon",
	Long:  `fabricctl submits tasks and reads system status against a running fabricd admin HTTP surface.`,
}

// Execute adds all child commands to rootCmd and runs it. Called once
// from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8090", "fabricd admin HTTP address")
	rootCmd.AddCommand(submitCmd, statusCmd, watchCmd)
}
