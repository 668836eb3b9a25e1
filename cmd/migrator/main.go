package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	dsnFlag           = "dsn"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"
)

type flags struct {
	dsn            string
	migrationsPath string
	down           bool
}

func main() {
	f := getFlagsValues()
	validateFlags(f)
	makeMigrations(f)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flags {
	dsn := pflag.StringP(dsnFlag, "d", "", "postgres connection string")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "", "migrations directory")
	down := pflag.Bool(downFlag, false, "roll back all migrations")
	pflag.Parse()
	return flags{dsn: *dsn, migrationsPath: *migrationsPath, down: *down}
}

func validateFlags(f flags) {
	var errs []error

	if f.dsn == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", dsnFlag))
	}

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

// databaseURL points golang-migrate at its pgx v5 driver.
func databaseURL(dsn string) string {
	_, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		rest = dsn
	}
	return "pgx5://" + rest
}

func makeMigrations(f flags) {
	m, err := migrate.New(
		"file://"+f.migrationsPath,
		databaseURL(f.dsn),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply, direction := m.Up, "up"
	if f.down {
		apply, direction = m.Down, "down"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "direction", direction, "err", err)
		fallDown()
	}
	m.Log.Printf("migrations applied: %s", direction)
}

func fallDown() {
	os.Exit(2)
}
