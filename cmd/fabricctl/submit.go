package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	submitDescription  string
	submitCreatorID    string
	submitCapabilities []string
	submitPriority     int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a task to the fabric",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.Marshal(map[string]any{
			"description":  submitDescription,
			"creatorId":    submitCreatorID,
			"capabilities": submitCapabilities,
			"priority":     submitPriority,
		})
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(addr+"/api/v1/tasks", "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("fabricd returned %d: %v", resp.StatusCode, out)
		}

		fmt.Printf("task submitted: %s\n", out["taskId"])
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "task description")
	submitCmd.Flags().StringVar(&submitCreatorID, "creator", "fabricctl", "creator id")
	submitCmd.Flags().StringSliceVar(&submitCapabilities, "capability", nil, "required capability (repeatable)")
	submitCmd.Flags().IntVar(&submitPriority, "priority", 0, "task priority")
	_ = submitCmd.MarkFlagRequired("description")
}
