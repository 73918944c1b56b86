package sources

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/schemas"
)

// Open opens (and creates if needed) the registry database at path and
// applies the embedded schema migrations in lexical order.
func Open(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate() > %w", err)
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	names, err := fs.Glob(schemas.Migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("fs.Glob() > %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := schemas.Migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("Migrations.ReadFile(%s) > %w", name, err)
		}
		if _, err := db.Exec(string(contents)); err != nil {
			return fmt.Errorf("db.Exec(%s) > %w", name, err)
		}
	}
	return nil
}
