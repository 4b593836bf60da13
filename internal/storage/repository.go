package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"charity/internal/core"
	"charity/internal/sources"

	_ "modernc.org/sqlite"
)

var (
	// ErrDatabaseMissing means the database file does not exist.
	ErrDatabaseMissing = errors.New("donor database not found")
	// ErrSchemaMissing means the file exists but was never seeded.
	ErrSchemaMissing = errors.New("donor tables missing")
)

// SQLiteRepository serves donor data kept in a SQLite database. The server
// opens it with OpenSQLiteReadOnly; NewSQLiteRepository creates and migrates
// it for Seed.
type SQLiteRepository struct {
	db       *sql.DB
	path     string
	readOnly bool
}

var _ sources.Source = (*SQLiteRepository)(nil)

// OpenSQLiteReadOnly opens an existing donor database without creating or
// migrating anything. A missing file or table is reported by the readers so
// a wrong path fails the load.
func OpenSQLiteReadOnly(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &SQLiteRepository{db: db, path: dbPath, readOnly: true}, nil
}

// NewSQLiteRepository creates the database at dbPath if needed and applies
// the donor schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Donor database ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

// checkTable verifies a read-only database has the table before querying it.
func (r *SQLiteRepository) checkTable(ctx context.Context, table string) error {
	if !r.readOnly {
		return nil
	}
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDatabaseMissing, r.path)
		}
		return fmt.Errorf("stat donor database: %w", err)
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect donor database: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s in %s", ErrSchemaMissing, table, r.path)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadDonors implements sources.DonorReader
func (r *SQLiteRepository) ReadDonors(ctx context.Context) ([]core.Donor, error) {
	if err := r.checkTable(ctx, "donors"); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, amount_cents, donated_on, message, anonymous FROM donors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query donors: %w", err)
	}
	defer rows.Close()

	var donors []core.Donor
	for rows.Next() {
		var (
			d         core.Donor
			donatedOn string
		)
		if err := rows.Scan(&d.Name, &d.Amount.Cents, &donatedOn, &d.Message, &d.Anonymous); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		if d.Date, err = core.ParseDate(donatedOn); err != nil {
			return nil, fmt.Errorf("donor %q date %q: %w", d.Name, donatedOn, err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return donors, nil
}

// ReadSilent implements sources.SilentReader
func (r *SQLiteRepository) ReadSilent(ctx context.Context) ([]core.Money, error) {
	if err := r.checkTable(ctx, "silent_donations"); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT amount_cents FROM silent_donations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query silent donations: %w", err)
	}
	defer rows.Close()

	var out []core.Money
	for rows.Next() {
		var m core.Money
		if err := rows.Scan(&m.Cents); err != nil {
			return nil, fmt.Errorf("scan silent donation: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate silent donations: %w", err)
	}
	return out, nil
}

// Seed replaces the stored donor data in a single transaction.
func (r *SQLiteRepository) Seed(ctx context.Context, donors []core.Donor, silent []core.Money) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM donors`, `DELETE FROM silent_donations`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}
	for _, d := range donors {
		donatedOn := ""
		if !d.Date.IsEmpty() {
			donatedOn = d.Date.Format("2006-01-02")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO donors (name, amount_cents, donated_on, message, anonymous) VALUES (?, ?, ?, ?, ?)`,
			d.Name, d.Amount.Cents, donatedOn, d.Message, d.Anonymous); err != nil {
			return fmt.Errorf("insert donor %q: %w", d.Name, err)
		}
	}
	for _, m := range silent {
		if _, err := tx.ExecContext(ctx, `INSERT INTO silent_donations (amount_cents) VALUES (?)`, m.Cents); err != nil {
			return fmt.Errorf("insert silent donation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Donor database seeded",
		"donors", len(donors),
		"silent_donations", len(silent))
	return nil
}
