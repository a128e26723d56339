package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/internal/app"
	"github.com/nexla-ia/gerador-frases-ia/internal/quota"
)

func newGenerateCmd() *cobra.Command {
	var skipGate bool

	generateCmd := &cobra.Command{
		Use:   "generate <platform> <topic>",
		Short: "Generate a caption for a platform and topic",
		Long:  `Runs one request through the full pipeline: gate decision, allowance check and the caption webhook. The allowance unit is consumed on the attempt, also when the webhook fails.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			platform, topic := args[0], args[1]

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if !skipGate {
				components.App.Gate.Mount(ctx)
				defer components.App.Gate.Unmount()
			}

			result, err := components.App.Generate(ctx, platform, topic)
			switch {
			case errors.Is(err, app.ErrAccessBlocked):
				return fmt.Errorf("access blocked: private browsing detected")
			case errors.Is(err, app.ErrQuotaExhausted):
				return fmt.Errorf("allowance exhausted: resets in %s",
					quota.FormatTimeRemaining(result.Status.TimeRemaining))
			case err != nil:
				return err
			}

			fmt.Println(result.Caption)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d requests remaining\n", result.Status.RemainingRequests)
			return nil
		},
	}

	generateCmd.Flags().BoolVar(&skipGate, "skip-gate", false, "skip the private-browsing gate decision")
	return generateCmd
}
