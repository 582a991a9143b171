package database

import (
	"fmt"
	"strings"

	"learn-persona/internal/config"
	"learn-persona/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"
)

func init() {
	// go-ora registers as "oracle", which sqlx does not know; it binds :name placeholders.
	sqlx.BindDriver(config.DriverOracle, sqlx.NAMED)
}

// Connect opens and pings the configured database.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	return Open(cfg.DB.Driver, cfg.GetDSN(), cfg.DB)
}

// Open connects with an explicit driver name and DSN.
func Open(driver, dsn string, dbCfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	switch driver {
	case config.DriverSQLite:
		// SQLite allows a single writer; an in-memory database lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case config.DriverOracle:
		// Oracle reports unquoted identifiers in upper case.
		db.Mapper = reflectx.NewMapperTagFunc("db", strings.ToUpper, strings.ToUpper)
		if dbCfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(dbCfg.MaxOpenConns)
		}
	default:
		if dbCfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(dbCfg.MaxOpenConns)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	logger.Get().Info("Connected to database", zap.String("driver", driver))
	return db, nil
}
