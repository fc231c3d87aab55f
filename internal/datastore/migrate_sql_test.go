//go:build sqltest
// +build sqltest

package datastore

import (
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-txdb"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/stretchr/testify/require"
)

func init() {
	txdb.Register("txdb", "postgres", "user=test password=test dbname=test host=/var/run/postgresql sslmode=disable")
}

// TestMigrations applies the embedded up migrations in order inside a rolled
// back transaction.
func TestMigrations(t *testing.T) {
	files, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	db, err := sql.Open("txdb", "migrations")
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".up.sql") {
			continue
		}
		content, err := fs.ReadFile(migrationsFS, "migrations/"+file.Name())
		require.NoError(t, err)
		_, err = tx.Exec(string(content))
		require.NoError(t, err, "migration %s failed", file.Name())
	}

	_, err = tx.Exec(`INSERT INTO tickers (symbol) VALUES ('TEST')`)
	require.NoError(t, err)
	_, err = tx.Exec(`INSERT INTO daily_prices (symbol, date, close) VALUES ('TEST', '2020-01-02', 10)`)
	require.NoError(t, err)
	_, err = tx.Exec(`INSERT INTO ticker_info (symbol, key, value) VALUES ('TEST', 'price_to_book', 1.2)`)
	require.NoError(t, err)
	_, err = tx.Exec(`INSERT INTO daily_prices (symbol, date, close) VALUES ('TEST', '2020-01-03', -1)`)
	require.Error(t, err, "non-positive closes are rejected")
}
