package journal

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillsdiff/supportbot/core/logger"
)

const insertEventQuery = `
	INSERT INTO dialog_events (id, kind, user_id, admin_id, created_at)
	VALUES (:id, :kind, :user_id, :admin_id, :created_at)`

type postgresRecorder struct {
	db *sqlx.DB
}

// NewPostgres returns a recorder backed by the dialog_events table.
func NewPostgres(db *sqlx.DB) Recorder {
	return &postgresRecorder{db: db}
}

func (r *postgresRecorder) Record(ctx context.Context, ev Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.NamedExecContext(writeCtx, insertEventQuery, ev); err != nil {
		logger.Journal.LogAttrs(ctx, slog.LevelError, "journal.write_failed",
			slog.String("kind", ev.Kind),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("journal: insert event: %w", err)
	}

	logger.Journal.LogAttrs(ctx, slog.LevelDebug, "journal.recorded",
		slog.String("kind", ev.Kind),
		slog.String("dialog_user", ev.UserID),
		slog.String("dialog_admin", ev.AdminID),
	)
	return nil
}
