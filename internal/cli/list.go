package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/pkg/model"
)

type stageListEntry struct {
	ID      string                       `json:"id"`
	Summary *model.StageExecutionSummary `json:"summary"`
}

func newListCmd() *cobra.Command {
	var (
		flagWhere  string
		flagLimit  int
		flagOffset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live stage executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if flagWhere != "" {
				q.Set("where", flagWhere)
			}
			q.Set("limit", strconv.Itoa(flagLimit))
			q.Set("offset", strconv.Itoa(flagOffset))

			resp, err := client.Get("/api/v1/stages?" + q.Encode())
			if err != nil {
				return fmt.Errorf("list stages: %w", err)
			}

			var entries []stageListEntry
			if err := json.Unmarshal(resp.Data, &entries); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No stage executions found.")
				return nil
			}

			fmt.Printf("%-12s  %-18s  %6s  %8s  %12s\n", "ID", "STATE", "TASKS", "DRIVERS", "CPU")
			fmt.Printf("%-12s  %-18s  %6s  %8s  %12s\n", "----", "-----", "-----", "-------", "---")
			for _, e := range entries {
				stats := e.Summary.Stats
				fmt.Printf("%-12s  %-18s  %6d  %8d  %12s\n",
					e.ID, e.Summary.State, stats.TotalTasks, stats.TotalDrivers,
					time.Duration(stats.TotalCPUTimeNanos))
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(entries), resp.Pagination.Total)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flagWhere, "where", "", "JavaScript predicate over (id, state, stats, tasks), e.g. 'state == \"FAILED\"'")
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&flagOffset, "offset", 0, "Result offset")
	return cmd
}
