// Package store archives audit entries to PostgreSQL. The browser-side
// audit log is capped and TTL'd; exporting moves entries into durable
// storage before the cap prunes them.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Archive provides the PostgreSQL audit sink.
type Archive struct {
	pool DBPool
	log  *zap.Logger
}

// New creates an Archive and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Archive, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Archive{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the audit table when it does not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	sql := `
        CREATE TABLE IF NOT EXISTS audit_entries (
            id          TEXT PRIMARY KEY,
            export_id   TEXT NOT NULL,
            occurred_at TIMESTAMPTZ NOT NULL,
            device_type TEXT NOT NULL,
            user_agent  TEXT NOT NULL,
            screen_size TEXT NOT NULL,
            action      TEXT NOT NULL,
            reason      TEXT NOT NULL,
            session_id  TEXT NOT NULL
        );
    `
	if _, err := a.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure audit schema: %w", err)
	}
	return nil
}

// PersistEntries writes one export batch inside a transaction. exportID
// groups the batch so repeated exports remain distinguishable.
func (a *Archive) PersistEntries(ctx context.Context, exportID string, entries []schemas.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			a.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = []interface{}{
			e.ID, exportID, time.UnixMilli(e.Timestamp),
			string(e.DeviceInfo.DeviceType), e.DeviceInfo.UserAgent, e.DeviceInfo.ScreenSize,
			string(e.Action), e.Reason, e.SessionID,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"audit_entries"},
		[]string{"id", "export_id", "occurred_at", "device_type", "user_agent", "screen_size", "action", "reason", "session_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy audit entries: %w", err)
	}
	if int(copyCount) != len(entries) {
		return fmt.Errorf("mismatch in copied entry count: expected %d, got %d", len(entries), copyCount)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.log.Info("Audit entries archived",
		zap.String("export_id", exportID),
		zap.Int("count", len(entries)),
	)
	return nil
}

// EntriesBySession returns the archived entries written under one browser
// tab session, oldest first.
func (a *Archive) EntriesBySession(ctx context.Context, sessionID string) ([]schemas.AuditEntry, error) {
	query := `
        SELECT id, occurred_at, device_type, user_agent, screen_size, action, reason, session_id
        FROM audit_entries
        WHERE session_id = $1
        ORDER BY occurred_at ASC;
    `
	rows, err := a.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []schemas.AuditEntry
	for rows.Next() {
		var e schemas.AuditEntry
		var occurredAt time.Time
		var deviceType, action string

		err := rows.Scan(
			&e.ID, &occurredAt, &deviceType,
			&e.DeviceInfo.UserAgent, &e.DeviceInfo.ScreenSize,
			&action, &e.Reason, &e.SessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry row: %w", err)
		}

		e.Timestamp = occurredAt.UnixMilli()
		e.DeviceInfo.DeviceType = schemas.DeviceType(deviceType)
		e.DeviceInfo.Timestamp = e.Timestamp
		e.DeviceInfo.IsMobile = e.DeviceInfo.DeviceType == schemas.DeviceMobile
		e.DeviceInfo.IsTablet = e.DeviceInfo.DeviceType == schemas.DeviceTablet
		e.Action = schemas.AuditAction(action)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return entries, nil
}
