package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/pkg/model"
)

type summaryListEntry struct {
	StageExecutionID string                       `json:"stageExecutionId"`
	Summary          *model.StageExecutionSummary `json:"summary"`
	ArchivedAt       string                       `json:"archivedAt"`
}

func newSummariesCmd() *cobra.Command {
	var flagState string

	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "List finalized summaries from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if flagState != "" {
				q.Set("state", flagState)
			}

			resp, err := client.Get("/api/v1/summaries?" + q.Encode())
			if err != nil {
				return fmt.Errorf("list summaries: %w", err)
			}

			var entries []summaryListEntry
			if err := json.Unmarshal(resp.Data, &entries); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No finalized summaries found.")
				return nil
			}

			fmt.Printf("%-12s  %-10s  %6s  %12s  %s\n", "ID", "STATE", "TASKS", "CPU", "ARCHIVED")
			fmt.Printf("%-12s  %-10s  %6s  %12s  %s\n", "----", "-----", "-----", "---", "--------")
			for _, e := range entries {
				fmt.Printf("%-12s  %-10s  %6d  %12s  %s\n",
					e.StageExecutionID, e.Summary.State, e.Summary.Stats.TotalTasks,
					time.Duration(e.Summary.Stats.TotalCPUTimeNanos), e.ArchivedAt)
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(entries), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagState, "state", "", "Filter by stage state (e.g. FINISHED, FAILED)")
	return cmd
}
