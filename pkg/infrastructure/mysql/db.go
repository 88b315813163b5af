package mysql

import (
	"context"
	"database/sql"
	"embed"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const driverName = "mysql"

// Open connects to MySQL. UTC times, parsed DATE/DATETIME columns and found-rows
// semantics for UPDATE are forced regardless of the DSN.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse db dsn")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true

	db, err := sqlx.Open(driverName, cfg.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping db")
	}
	return db, nil
}

type MigrateDirection string

const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// Migrate applies the embedded schema migrations over a dedicated connection that
// allows multi-statement files.
func Migrate(dsn string, direction MigrateDirection) error {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return errors.Wrap(err, "failed to parse db dsn")
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true

	db, err := sql.Open(driverName, cfg.FormatDSN())
	if err != nil {
		return errors.Wrap(err, "failed to open db for migrations")
	}
	defer db.Close()

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to create migration driver")
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "failed to read embedded migrations")
	}
	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return errors.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrapf(err, "failed to migrate %s", direction)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return errors.Wrap(verr, "failed to read schema version")
	}
	log.WithFields(log.Fields{"direction": direction, "version": version, "dirty": dirty}).Info("schema migrated")
	return nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit tx")
	}
	return nil
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}
