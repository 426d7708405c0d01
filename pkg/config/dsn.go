package config

import (
	"strings"

	"github.com/TechXTT/workhours/pkg/runtime"
)

// DataSource returns the DSN handed to the driver. Postgres URLs get
// sslmode=disable unless they set it; sqlite paths become modernc DSNs.
func (d DatabaseConfig) DataSource() string {
	switch d.Driver {
	case runtime.DriverSQLite:
		return runtime.SQLiteDSN(d.DSN)
	case runtime.DriverPostgres, runtime.DriverPgx:
		dsn := d.DSN
		isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
		if isURL && !strings.Contains(dsn, "sslmode=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = dsn + sep + "sslmode=disable"
		}
		return dsn
	default:
		return d.DSN
	}
}

// ConnectOptions maps the section onto runtime options.
func (d DatabaseConfig) ConnectOptions() runtime.ConnectOptions {
	return runtime.ConnectOptions{
		Driver:          d.Driver,
		DSN:             d.DataSource(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}
