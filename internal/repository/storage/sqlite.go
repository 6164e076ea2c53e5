package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStorage keeps records in a single key/value table. Write
// transactions take the database lock at BEGIN, so they run one at a time.
type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	storage := &SQLiteStorage{Connection: conn}
	if err = storage.Init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return storage, nil
}

// Init applies embedded migrations that were not applied yet.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)`
	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("can't read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		if err = that.applyMigration(ctx, name); err != nil {
			return fmt.Errorf("can't apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (that *SQLiteStorage) applyMigration(ctx context.Context, name string) error {
	content, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return err
	}

	tx, err := that.Connection.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var applied int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&applied)
	if err != nil {
		return err
	}
	if applied > 0 {
		return nil
	}

	if _, err = tx.ExecContext(ctx, string(content)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (that *SQLiteStorage) Close() error {
	if that == nil || that.Connection == nil {
		return nil
	}

	return that.Connection.Close()
}

func (that *SQLiteStorage) Update(ctx context.Context, fn func(tx Tx) error) error {
	return that.run(ctx, false, fn)
}

func (that *SQLiteStorage) View(ctx context.Context, fn func(tx Tx) error) error {
	return that.run(ctx, true, fn)
}

func (that *SQLiteStorage) run(ctx context.Context, readOnly bool, fn func(tx Tx) error) error {
	sqlTx, err := that.Connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	if err = fn(&sqliteTx{tx: sqlTx, readOnly: readOnly}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if readOnly {
		return sqlTx.Rollback()
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}

type sqliteTx struct {
	tx       *sql.Tx
	readOnly bool
}

func (that *sqliteTx) Get(ctx context.Context, key Key, dst any) error {
	var raw []byte

	err := that.tx.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, string(key)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("can't get %s: %w", key, err)
	}

	if err = json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

func (that *sqliteTx) Exists(ctx context.Context, key Key) (bool, error) {
	var count int

	err := that.tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE key = ?`, string(key)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("can't check %s: %w", key, err)
	}

	return count > 0, nil
}

func (that *sqliteTx) Create(ctx context.Context, key Key, value any) error {
	if that.readOnly {
		return ErrReadOnly
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", key, err)
	}

	_, err = that.tx.ExecContext(ctx,
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)`,
		string(key), raw, time.Now().UTC().UnixMilli(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	}
	if err != nil {
		return fmt.Errorf("can't create %s: %w", key, err)
	}

	return nil
}

func (that *sqliteTx) Put(ctx context.Context, key Key, value any) error {
	if that.readOnly {
		return ErrReadOnly
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", key, err)
	}

	_, err = that.tx.ExecContext(ctx, `
INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`,
		string(key), raw, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("can't put %s: %w", key, err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var (
	_ Store = (*SQLiteStorage)(nil)
	_ Store = (*RedisStorage)(nil)
)
