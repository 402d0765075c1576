package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print current fabric system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := fetchStatus()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func fetchStatus() (map[string]any, error) {
	var out map[string]any
	if err := fetchJSON("/api/v1/status", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fetchMessages() ([]map[string]any, error) {
	var out []map[string]any
	if err := fetchJSON("/api/v1/messages", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fetchJSON(path string, out any) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(addr + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("fabricd returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
