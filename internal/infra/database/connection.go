package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // CGo-free sqlite driver
)

// Open connects with the given driver ("postgres" or "sqlite"), sets up
// the pool and proves the connection with a ping.
func Open(driver, dsn string) (*sql.DB, error) {
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
