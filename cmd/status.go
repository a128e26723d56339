package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/internal/quota"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	var session bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the device's remaining request allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if session {
				info := components.App.Quota.SessionInfo(ctx)
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize session info: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			status := components.App.Status(ctx)
			if asJSON {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize status: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if status.IsBlocked {
				fmt.Printf("blocked: allowance resets in %s\n", quota.FormatTimeRemaining(status.TimeRemaining))
				return nil
			}
			fmt.Printf("%d requests remaining, window resets in %s\n",
				status.RemainingRequests, quota.FormatTimeRemaining(status.TimeRemaining))
			return nil
		},
	}

	statusCmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	statusCmd.Flags().BoolVar(&session, "session", false, "print the raw session record with its age")
	return statusCmd
}
