// Package postgres is the pgx-backed implementation of the store
// interfaces. Grounded on the teacher's
// internal/infrastructure/persistence/post_repository.go transaction
// idiom (BeginTx / defer Rollback / Commit, raw SQL + manual Scan for
// custom query shapes) generalized onto pgx/v5 instead of
// database/sql+lib/pq, and onto the real conditional-claim primitive the
// teacher's own snapshot only stubbed out.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// Connect opens a database/sql pool against databaseURL (spec's
// DATABASE_URL) using pgx's stdlib driver adapter. Using database/sql as
// the surface (rather than pgx's native pgxpool API) keeps the store
// testable with github.com/DATA-DOG/go-sqlmock, which only fakes
// database/sql/driver; pgx is still the driver underneath, so the claim
// query's FOR UPDATE SKIP LOCKED and full context propagation work
// exactly as they would against pgxpool. Pool tuning mirrors the
// teacher's worker connectDatabase (cmd/worker/main.go).
func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}
