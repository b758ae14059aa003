/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed sql/*/*.sql
var SQLFiles embed.FS

// MigrationSource returns the embedded migrations for the given driver.
func MigrationSource(driver string) (*migrate.EmbedFileSystemMigrationSource, error) {
	switch driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: SQLFiles,
		Root:       "sql/" + driver,
	}, nil
}

// Migrate applies (or rolls back) the schema and returns the number of
// migrations executed.
func Migrate(db *sql.DB, driver string, direction migrate.MigrationDirection) (int, error) {
	source, err := MigrationSource(driver)
	if err != nil {
		return 0, err
	}
	return migrate.Exec(db, driver, source, direction)
}
