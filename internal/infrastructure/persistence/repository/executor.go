package repository

import (
	"context"
	"database/sql"

	"github.com/garagehub/returns-workflow/internal/infrastructure/persistence/sqlite"
)

// getExecutor routes a statement through the transaction carried in the
// context, or the bare connection when there is none.
func getExecutor(ctx context.Context, db *sql.DB) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}
