package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database described by the DSN, selecting the
// dialect from the DSN shape. postgres:// and postgresql:// URLs (or
// key=value DSNs) go to PostgreSQL; file: paths and *.db paths go to
// SQLite.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if isSQLiteDSN(trimmed) {
		conn, err := gorm.Open(sqlite.Open(normalizeSQLiteDSN(trimmed)), cfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", err)
		}
		return conn, nil
	}

	conn, err := gorm.Open(postgres.Open(trimmed), cfg)
	if err != nil {
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}
	return conn, nil
}

// isSQLiteDSN reports whether the DSN targets SQLite.
func isSQLiteDSN(dsn string) bool {
	lowered := strings.ToLower(dsn)
	if strings.HasPrefix(lowered, "postgres://") || strings.HasPrefix(lowered, "postgresql://") {
		return false
	}
	if strings.HasPrefix(lowered, "file:") || strings.HasPrefix(lowered, "sqlite:") {
		return true
	}
	if strings.Contains(lowered, "host=") || strings.Contains(lowered, "dbname=") {
		return false
	}
	return strings.HasSuffix(lowered, ".db") || strings.Contains(lowered, ":memory:")
}

// normalizeSQLiteDSN strips the optional sqlite: scheme and applies the
// pragmas used across the project.
func normalizeSQLiteDSN(dsn string) string {
	out := strings.TrimPrefix(dsn, "sqlite:")
	if strings.Contains(out, ":memory:") || strings.Contains(out, "mode=memory") {
		return out
	}
	if !strings.HasPrefix(strings.ToLower(out), "file:") {
		out = "file:" + out
	}
	separator := "?"
	if strings.Contains(out, "?") {
		separator = "&"
	}
	return out + separator + strings.Join([]string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
		"_foreign_keys=on",
	}, "&")
}
