package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pool defaults. Postgres deployments share a hosted instance; SQLite is a
// local file where a single writer connection avoids SQLITE_BUSY churn.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

var (
	openConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "deskhive_db_open_connections",
		Help: "Open database connections by state",
	}, []string{"state"})
)

// Open connects to the configured datastore and verifies the connection.
// Supported drivers: "postgres" (hosted) and "sqlite3" (local file).
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// ObserveStats publishes connection pool stats to the metrics registry.
// Call periodically (the serve command runs it on a ticker).
func ObserveStats(db *sql.DB) {
	stats := db.Stats()
	openConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	openConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	openConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}
