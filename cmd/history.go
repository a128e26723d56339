package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the persisted search history",
	}

	historyCmd.AddCommand(newHistoryListCmd())
	historyCmd.AddCommand(newHistoryStatsCmd())
	historyCmd.AddCommand(newHistoryClearCmd())
	return historyCmd
}

func newHistoryListCmd() *cobra.Command {
	var term string
	var asJSON bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			var items []schemas.SearchHistoryItem
			if term != "" {
				items = components.App.History.Search(ctx, term)
			} else {
				items = components.App.History.Items(ctx)
			}

			if asJSON {
				data, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize history: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(items) == 0 {
				fmt.Println("history is empty")
				return nil
			}
			for _, item := range items {
				fmt.Printf("%-12s  %-20s  %s\n",
					components.App.History.FormatTimestamp(item.Timestamp),
					item.Platform, item.Topic)
			}
			return nil
		},
	}

	listCmd.Flags().StringVarP(&term, "search", "s", "", "filter entries by a case-insensitive term")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return listCmd
}

func newHistoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			stats := components.App.History.Stats(ctx)
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize history stats: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			components.App.History.Clear(ctx)
			fmt.Println("history cleared")
			return nil
		},
	}
}
