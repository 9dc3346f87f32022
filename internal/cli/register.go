package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/pkg/model"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <stage.attempt>",
		Short: "Register a new stage execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseStageExecutionID(args[0])
			if err != nil {
				return err
			}

			resp, err := client.Post("/api/v1/stages", map[string]any{
				"stageId": id.StageID,
				"attempt": id.ID,
			})
			if err != nil {
				return fmt.Errorf("register stage: %w", err)
			}

			var data map[string]any
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("Stage execution registered: %s (%s)\n", data["id"], data["state"])
			return nil
		},
	}
}
