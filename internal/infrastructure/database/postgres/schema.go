package postgres

import (
	"context"
	"log/slog"

	"customer-engine/internal/pkg/apperrors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id            BIGSERIAL PRIMARY KEY,
        first_name    TEXT    NOT NULL,
        last_name     TEXT    NOT NULL,
        age           INTEGER NOT NULL,
        date_of_birth DATE    NOT NULL,
        email         TEXT    NOT NULL,
        password      TEXT    NOT NULL,
        is_pro_member BOOLEAN NOT NULL DEFAULT FALSE
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (email)`,
}

// EnsureSchema creates the customers table and its unique email index in a
// single transaction. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) (err error) {
	logger = logger.With("component", "Schema")
	logger.InfoContext(ctx, "Ensuring customers schema")

	tx, err := db.Begin(ctx)
	if err != nil {
		return apperrors.WrapDatabaseError(err, "begin schema transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.ErrorContext(ctx, "Failed to rollback schema transaction", slog.Any("error", rbErr))
			}
		}
	}()

	for _, stmt := range schemaStatements {
		if _, err = tx.Exec(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Failed to apply schema statement", slog.Any("error", err))
			return apperrors.WrapDatabaseError(err, "apply schema")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return apperrors.WrapDatabaseError(err, "commit schema transaction")
	}
	logger.InfoContext(ctx, "Customers schema is up to date")
	return nil
}
