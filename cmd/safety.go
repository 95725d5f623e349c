package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/safety"
)

// The safety controller lives inside the running server process, so
// these commands talk to its REST API. Only `safety check` runs the
// screen locally.

var safetyReason string

var safetyCmd = &cobra.Command{
	Use:   "safety",
	Short: "Inspect and control the safety system",
}

var safetyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current safety status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return safetyCall(http.MethodGet, "/api/safety/status", nil)
	},
}

var safetyPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Emergency stop: halt all automation immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		return safetyCall(http.MethodPost, "/api/safety/pause",
			map[string]string{"reason": safetyReason})
	},
}

var safetyResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume operations after an emergency stop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return safetyCall(http.MethodPost, "/api/safety/resume", nil)
	},
}

var safetyModeCmd = &cobra.Command{
	Use:   "mode <mode>",
	Short: "Set the operating mode (manual_review, ai_draft_only, supervised_auto, full_automation)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return safetyCall(http.MethodPost, "/api/safety/mode",
			map[string]string{"mode": args[0]})
	},
}

var safetyCrisisCmd = &cobra.Command{
	Use:   "crisis [crisis-type]",
	Short: "Activate crisis mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		crisisType := "generic"
		if len(args) == 1 {
			crisisType = args[0]
		}
		return safetyCall(http.MethodPost, "/api/safety/crisis",
			map[string]string{"crisis_type": crisisType})
	},
}

var safetyCheckCmd = &cobra.Command{
	Use:   "check <text>",
	Short: "Run the content safety screen on a piece of text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := safety.NewController().CheckContent(args[0])

		fmt.Printf("Safe:          %v\n", result.Safe)
		fmt.Printf("Safety score:  %d/100\n", result.SafetyScore)
		fmt.Printf("Manual review: %v\n", result.RequiresManualReview)
		for _, issue := range result.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		return nil
	},
}

// safetyCall sends a request to the running server and prints the
// JSON response.
func safetyCall(method, path string, body any) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d%s", cfg.Server.Port, path)

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching server at %s (is `contentpilot server` running?): %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		fmt.Println(string(respBody))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func init() {
	safetyPauseCmd.Flags().StringVarP(&safetyReason, "reason", "r", "Manual activation", "reason for the emergency stop")

	safetyCmd.AddCommand(safetyStatusCmd)
	safetyCmd.AddCommand(safetyPauseCmd)
	safetyCmd.AddCommand(safetyResumeCmd)
	safetyCmd.AddCommand(safetyModeCmd)
	safetyCmd.AddCommand(safetyCrisisCmd)
	safetyCmd.AddCommand(safetyCheckCmd)
	rootCmd.AddCommand(safetyCmd)
}
