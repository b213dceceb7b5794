package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLStore guarda la whitelist en una tabla. Sirve para postgres y sqlite.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQL abre la conexión, verifica health y aplica las migraciones.
func OpenSQL(ctx context.Context, dialect, dsn string) (*SQLStore, error) {
	db, err := openDB(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// openDB abre la conexión (pgx stdlib o modernc sqlite) y verifica health.
func openDB(ctx context.Context, dialect, dsn string) (*sql.DB, error) {
	driver := "pgx"
	if dialect == DriverSQLite {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == DriverSQLite {
		// un solo writer; evita SQLITE_BUSY entre conexiones del pool
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(1 * time.Hour)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Migrate aplica todas las migraciones embebidas.
func Migrate(db *sql.DB, dialect string) error {
	gooseDialect := "postgres"
	if dialect == DriverSQLite {
		gooseDialect = "sqlite3"
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// ph devuelve el placeholder n (1-based) del dialecto.
func (s *SQLStore) ph(n int) string {
	if s.dialect == DriverSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

func (s *SQLStore) Load(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT identity, account_id, registered_at, alternate
  FROM whitelist_entries
 ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("load whitelist: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		var (
			e   domain.Entry
			alt bool
		)
		if err := rows.Scan(&e.Identity, &e.AccountID, &e.RegisteredAt, &alt); err != nil {
			return nil, fmt.Errorf("scan whitelist row: %w", err)
		}
		if alt {
			e.Namespace = domain.Alternate
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Save reescribe la tabla completa en una sola transacción.
func (s *SQLStore) Save(ctx context.Context, entries []domain.Entry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM whitelist_entries`); err != nil {
		return fmt.Errorf("clear whitelist: %w", err)
	}
	if len(entries) > 0 {
		stmt, perr := tx.PrepareContext(ctx, fmt.Sprintf(`
INSERT INTO whitelist_entries
  (identity_key, identity, account_id, registered_at, alternate, position)
VALUES
  (%s,%s,%s,%s,%s,%s)
`, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6)))
		if perr != nil {
			return fmt.Errorf("prepare insert: %w", perr)
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err = stmt.ExecContext(ctx, strings.ToLower(e.Identity), e.Identity, e.AccountID,
				e.RegisteredAt, e.Alternate(), i); err != nil {
				return fmt.Errorf("insert %s: %w", e.Identity, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
