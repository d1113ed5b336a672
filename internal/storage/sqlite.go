package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var migrations embed.FS

var gooseOnce sync.Once

// NewSQLite opens the SQLite database at path, creating its parent directory
// if needed, migrates it to the current schema and returns a [DB] over it.
func NewSQLite(ctx context.Context, logger *slog.Logger, path string) (*DB, error) {
	if path != MemoryPath {
		const userOnlyDirPerms = 0o700
		if err := os.MkdirAll(filepath.Dir(path), userOnlyDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create db parent directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create DB handler: %w", err)
	} else if err = handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	// a single connection serializes writers and keeps :memory: databases alive
	handle.SetMaxOpenConns(1)

	logger = logger.With(slog.String("db", path))
	if err = migrate(ctx, logger, handle); err != nil {
		_ = handle.Close()
		return nil, err
	}

	orm, err := gorm.Open(sqlite.New(sqlite.Config{Conn: handle}), &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond, //nolint:mnd // slow query log threshold
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}
	return &DB{db: orm, sql: handle}, nil
}

func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if path != MemoryPath {
		params += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	if strings.ContainsRune(path, '?') {
		return path + "&" + params
	}
	return path + "?" + params
}

func migrate(ctx context.Context, logger *slog.Logger, handle *sql.DB) error {
	var setupErr error
	gooseOnce.Do(func() {
		goose.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
		goose.SetBaseFS(migrations)
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return fmt.Errorf("failed to set migration dialect: %w", setupErr)
	}
	if err := goose.UpContext(ctx, handle, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	return nil
}

// translate maps driver and gorm errors onto the storage sentinels.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		return ErrAlreadyExists
	case errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		return ErrUnknownOwner
	default:
		return err
	}
}
