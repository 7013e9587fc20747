package flowcharts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/flowchart-api/cmd/cli/config"
	"github.com/crucial707/flowchart-api/cmd/cli/output"
)

// ==========================
// Init Flowcharts
// ==========================
func InitFlowcharts(rootCmd *cobra.Command) {
	flowchartsCmd := &cobra.Command{
		Use:   "flowcharts",
		Short: "Manage flowcharts",
	}

	flowchartsCmd.AddCommand(
		listCmd(),
		getCmd(),
		createCmd(),
		updateCmd(),
		deleteCmd(),
	)

	rootCmd.AddCommand(flowchartsCmd)
}

type flowchart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your flowcharts, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var flowcharts []flowchart
			if err := doRequest("GET", "/api/flowcharts", nil, &flowcharts); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(flowcharts))
			for _, f := range flowcharts {
				desc := ""
				if f.Description != nil {
					desc = *f.Description
				}
				rows = append(rows, []interface{}{f.ID, f.Title, desc, f.UpdatedAt})
			}
			output.RenderTable([]string{"ID", "Title", "Description", "Updated"}, rows)
			return nil
		},
	}
}

// ==========================
// GET
// ==========================
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a flowchart, including its data payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f flowchart
			if err := doRequest("GET", "/api/flowcharts/"+args[0], nil, &f); err != nil {
				return err
			}

			pretty, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createCmd() *cobra.Command {
	var title, description, data string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flowchart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("title is required")
			}
			if !json.Valid([]byte(data)) {
				return fmt.Errorf("--data must be valid JSON")
			}

			payload := map[string]interface{}{
				"title": title,
				"data":  json.RawMessage(data),
			}
			if cmd.Flags().Changed("description") {
				payload["description"] = description
			}

			var f flowchart
			if err := doRequest("POST", "/api/flowcharts", payload, &f); err != nil {
				return err
			}

			fmt.Printf("Created flowchart %s\n", f.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Flowchart title")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().StringVar(&data, "data", "{}", "Flowchart data as a JSON document")

	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateCmd() *cobra.Command {
	var title, description, data string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a flowchart (only the given flags change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]interface{}{}
			if cmd.Flags().Changed("title") {
				patch["title"] = title
			}
			if cmd.Flags().Changed("description") {
				patch["description"] = description
			}
			if cmd.Flags().Changed("data") {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data must be valid JSON")
				}
				patch["data"] = json.RawMessage(data)
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: pass --title, --description or --data")
			}

			var f flowchart
			if err := doRequest("PUT", "/api/flowcharts/"+args[0], patch, &f); err != nil {
				return err
			}

			fmt.Printf("Updated flowchart %s\n", f.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&data, "data", "", "New data as a JSON document")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flowchart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doRequest("DELETE", "/api/flowcharts/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

// doRequest performs an authenticated JSON request against the API and
// decodes the response into out when it is non-nil.
func doRequest(method, path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}
