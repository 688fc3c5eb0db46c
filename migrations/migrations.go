// Package migrations applies the postgres schema via goose. The sqlite
// path (tests and the one-shot CLI) uses gorm AutoMigrate instead.
package migrations

import (
	"embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// MigrateStore brings the postgres schema up to date.
func MigrateStore(db *gorm.DB) error {
	goose.SetLogger(&logger{})
	goose.SetBaseFS(migrationFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql connection: %w", err)
	}

	return goose.Up(sqlDB, "sql")
}

/*
logger implements goose.Logger interface

	type Logger interface {
		Fatalf(format string, v ...interface{})
		Printf(format string, v ...interface{})
	}
*/
type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

func (m *logger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
