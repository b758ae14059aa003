package database

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/blnkfinance/blnk-atm/config"
	"github.com/blnkfinance/blnk-atm/model"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"

	defaultQueryTimeout = 5 * time.Second
)

// Datasource is the SQL backed account ledger store.
type Datasource struct {
	Conn    *sql.DB
	Driver  string
	Timeout time.Duration
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := ConnectDB(configuration.DataSource.Driver, configuration.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	return NewDatasource(con, configuration.DataSource.Driver, configuration.DataSource.QueryTimeout()), nil
}

// NewDatasource wraps an open connection. A zero timeout falls back to five seconds.
func NewDatasource(conn *sql.DB, driver string, timeout time.Duration) *Datasource {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Datasource{Conn: conn, Driver: driver, Timeout: timeout}
}

// mysqlDSN makes the driver return DATETIME columns as time.Time in UTC.
func mysqlDSN(dns string) (string, error) {
	cfg, err := mysql.ParseDSN(dns)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func ConnectDB(driver, dns string) (*sql.DB, error) {
	if driver == DriverMySQL {
		var err error
		if dns, err = mysqlDSN(dns); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dns)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; sharing one connection also keeps
	// in-memory databases alive across calls.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (d Datasource) Close() error {
	return d.Conn.Close()
}

// withTimeout bounds a store call so a stuck backend surfaces as ErrStorage.
func (d Datasource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// rebind rewrites ? placeholders into the $n form postgres expects.
func (d Datasource) rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insertReturningID runs an INSERT and returns the generated id. Postgres has
// no LastInsertId so the statement is suffixed with RETURNING id there.
func (d Datasource) insertReturningID(ctx context.Context, conn execer, query string, args ...interface{}) (int64, error) {
	if d.Driver == DriverPostgres {
		var id int64
		err := conn.QueryRowContext(ctx, d.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := conn.ExecContext(ctx, d.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func storageError(err error, msg string) error {
	return errors.Wrapf(model.ErrStorage, "%s: %v", msg, err)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
