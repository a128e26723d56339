package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

func newCheckCmd() *cobra.Command {
	var full bool

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run one gate decision against the configured browser environment",
		Long:  `Classifies the device, runs the private-browsing probes once and prints the resulting gate state. Mobile and tablet devices bypass detection entirely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			state := components.App.Gate.Mount(ctx)
			defer components.App.Gate.Unmount()
			_, result := components.App.Gate.State()

			out := struct {
				State     schemas.GateState       `json:"state"`
				Detection schemas.DetectionResult `json:"detection"`
				Device    schemas.DeviceInfo      `json:"device"`
			}{
				State:     state,
				Detection: result,
				Device:    components.App.Classifier.Classify(ctx),
			}

			if !full {
				fmt.Printf("gate: %s (confidence %.1f%%)\n", state, result.Confidence)
				return nil
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize check result: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}

	checkCmd.Flags().BoolVar(&full, "full", false, "print the full detection and device report as JSON")
	return checkCmd
}
