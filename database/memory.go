package database

import (
	migrate "github.com/rubenv/sql-migrate"
)

// NewInMemoryDataSource opens a private in-memory sqlite database with the
// schema applied. Used by tests and local experiments.
func NewInMemoryDataSource() (*Datasource, error) {
	conn, err := ConnectDB(DriverSQLite, ":memory:")
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(conn, DriverSQLite, migrate.Up); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return NewDatasource(conn, DriverSQLite, 0), nil
}
