package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/internal/config"
	"github.com/nexla-ia/gerador-frases-ia/internal/observability"
	"github.com/nexla-ia/gerador-frases-ia/internal/store"
)

func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and export the device audit log",
	}

	auditCmd.AddCommand(newAuditListCmd())
	auditCmd.AddCommand(newAuditStatsCmd())
	auditCmd.AddCommand(newAuditExportCmd())
	auditCmd.AddCommand(newAuditLookupCmd())
	return auditCmd
}

func newAuditListCmd() *cobra.Command {
	var asJSON bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			entries := components.App.Audit.Entries(ctx)
			if asJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize audit entries: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Println("audit log is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-18s  %-8s  %s\n",
					time.UnixMilli(e.Timestamp).Format("02/01/06 15:04"),
					e.Action, e.DeviceInfo.DeviceType, e.Reason)
			}
			return nil
		},
	}

	listCmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return listCmd
}

func newAuditStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			stats := components.App.Audit.Stats(ctx)
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize audit stats: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newAuditExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Archive the audit log to PostgreSQL",
		Long:  `Copies the current audit entries into the configured PostgreSQL sink before the cap or the TTL prunes them. Requires audit.postgres_url (NEXLA_DATABASE_URL) to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			if cfg.Audit.PostgresURL == "" {
				return fmt.Errorf("audit.postgres_url is not configured")
			}

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			entries := components.App.Audit.Entries(ctx)
			if len(entries) == 0 {
				fmt.Println("audit log is empty, nothing to export")
				return nil
			}

			pool, err := pgxpool.New(ctx, cfg.Audit.PostgresURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			archive, err := store.New(ctx, pool, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize audit archive: %w", err)
			}
			if err := archive.EnsureSchema(ctx); err != nil {
				return err
			}

			exportID := uuid.NewString()
			if err := archive.PersistEntries(ctx, exportID, entries); err != nil {
				return err
			}

			fmt.Printf("exported %d entries (export %s)\n", len(entries), exportID)
			return nil
		},
	}
}

func newAuditLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <session-id>",
		Short: "Fetch archived audit entries for one browser tab session",
		Long:  `Queries the PostgreSQL archive for the entries recorded under one tab session id, oldest first. Requires audit.postgres_url (NEXLA_DATABASE_URL) to be set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			if cfg.Audit.PostgresURL == "" {
				return fmt.Errorf("audit.postgres_url is not configured")
			}

			pool, err := pgxpool.New(ctx, cfg.Audit.PostgresURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			archive, err := store.New(ctx, pool, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize audit archive: %w", err)
			}

			entries, err := archive.EntriesBySession(ctx, args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no archived entries for this session")
				return nil
			}

			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize archived entries: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
