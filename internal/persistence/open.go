// Package persistence selects a save store backend by driver name.
package persistence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quantumassembler/internal/infra/persistence/memory"
	"quantumassembler/internal/infra/persistence/mongo"
	"quantumassembler/internal/infra/persistence/mysql"
	"quantumassembler/internal/infra/persistence/postgres"
	"quantumassembler/internal/infra/persistence/sqlite"
	"quantumassembler/pkg/domain"
)

// Driver identifies a save store backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
	DriverMySQL    Driver = "mysql"
)

// Config carries the settings of every backend; only the selected driver's
// fields are read.
type Config struct {
	Driver        string `mapstructure:"driver"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	MySQLDSN      string `mapstructure:"mysql_dsn"`
	Slot          string `mapstructure:"slot"`
}

// Open returns the save store for cfg.Driver, defaulting to sqlite.
func Open(ctx context.Context, cfg Config, l *zap.Logger) (domain.SaveStore, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case DriverMongo:
		return mongo.Open(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Slot: cfg.Slot}, l)
	case DriverMySQL:
		return mysql.Open(mysql.Config{DSN: cfg.MySQLDSN, Slot: cfg.Slot}, l)
	default:
		return nil, fmt.Errorf("unknown save driver %s", cfg.Driver)
	}
}
