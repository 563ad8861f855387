package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
)

// RunMigrations applies all pending schema migrations from the configured
// directory.  Migrations run over a dedicated database/sql handle (via the
// pgx stdlib driver) rather than the pool, and the handle is closed when
// done.
func RunMigrations(cfg config.DatabaseConfig, logger logging.Logger) error {
	db, err := sql.Open("pgx", BuildDSN(cfg))
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to open migration connection")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationPath, cfg.DBName, driver)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, _, _ := m.Version()
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to run migrations").
			WithDetail(fmt.Sprintf("current version %d", version))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Warn("failed to read migration version", logging.Err(err))
		return nil
	}
	logger.Info("database migrations applied",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty))
	return nil
}
