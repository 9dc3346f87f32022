package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/pkg/model"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <stage.attempt>",
		Short: "List the retained task reports of a stage execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/stages/" + args[0] + "/tasks")
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			var tasks []model.TaskReport
			if err := json.Unmarshal(resp.Data, &tasks); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No task reports yet.")
				return nil
			}

			fmt.Printf("%-20s  %-10s  %8s  %12s  %12s\n", "TASK", "STATE", "DRIVERS", "CPU", "INPUT")
			fmt.Printf("%-20s  %-10s  %8s  %12s  %12s\n", "----", "-----", "-------", "---", "-----")
			for _, task := range tasks {
				fmt.Printf("%-20s  %-10s  %8d  %12s  %12s\n",
					task.TaskID, task.Status.State, task.Stats.TotalDrivers,
					time.Duration(task.Stats.TotalCPUTimeNanos),
					humanize.IBytes(uint64(task.Stats.RawInputDataSizeBytes)))
			}
			return nil
		},
	}
}
