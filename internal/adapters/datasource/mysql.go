// Package datasource executes fixed SQL statements against the relational
// store and materializes the results as tables.
package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/pkg/logger"
	"github.com/okian/courtview/pkg/metrics"
)

// Executor runs a complete SQL statement. On failure it returns an empty
// table together with an *Error.
type Executor interface {
	Execute(ctx context.Context, q Query) (table.Table, error)
}

// MySQL executes statements over a bounded connection pool.
type MySQL struct {
	db           *sql.DB
	queryTimeout time.Duration
	logger       logger.Logger
}

// Option configures a MySQL executor.
type Option func(*MySQL)

// WithQueryTimeout bounds each statement. Non-positive values are ignored.
func WithQueryTimeout(d time.Duration) Option {
	return func(m *MySQL) {
		if d > 0 {
			m.queryTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *MySQL) {
		if l != nil {
			m.logger = l
		}
	}
}

// PoolConfig describes how to reach and pool the store.
type PoolConfig struct {
	Addr            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DSN renders the go-sql-driver DSN for the pool config.
func (p PoolConfig) DSN() string {
	c := mysql.NewConfig()
	c.User = p.User
	c.Passwd = p.Password
	c.Net = "tcp"
	c.Addr = p.Addr
	c.DBName = p.Database
	c.ParseTime = true
	c.Timeout = p.ConnectTimeout
	return c.FormatDSN()
}

// OpenDB creates a bounded pool without touching the network.
func OpenDB(pc PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", pc.DSN())
	if err != nil {
		return nil, &Error{Op: "open", Kind: ErrConnect, Err: err}
	}
	db.SetMaxOpenConns(pc.MaxOpenConns)
	db.SetMaxIdleConns(pc.MaxIdleConns)
	db.SetConnMaxIdleTime(pc.ConnMaxIdleTime)
	return db, nil
}

// Open creates the pool and verifies connectivity.
func Open(ctx context.Context, pc PoolConfig, opts ...Option) (*MySQL, error) {
	db, err := OpenDB(pc)
	if err != nil {
		return nil, err
	}

	m := New(db, opts...)
	if err := m.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	m.logger.Info(ctx, "connected to data source",
		logger.String("addr", pc.Addr),
		logger.String("database", pc.Database),
		logger.Int("maxOpenConns", pc.MaxOpenConns),
	)
	return m, nil
}

// New wraps an existing pool.
func New(db *sql.DB, opts ...Option) *MySQL {
	m := &MySQL{
		db:           db,
		queryTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Named("datasource")
	}
	return m
}

// Ping checks that a pooled connection can reach the store.
func (m *MySQL) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
	defer cancel()
	if err := m.db.PingContext(ctx); err != nil {
		return &Error{Op: "ping", Kind: classify(ctx, err, ErrConnect), Err: err}
	}
	return nil
}

// Execute runs q on a pooled connection and materializes every row. The
// connection goes back to the pool on every exit path.
func (m *MySQL) Execute(ctx context.Context, q Query) (table.Table, error) {
	const op = "execute"
	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := m.db.QueryContext(ctx, q.Text)
	if err != nil {
		return m.fail(ctx, op, q, classify(ctx, err, ErrQuery), err)
	}
	defer func() { _ = rows.Close() }()

	t, err := table.FromRows(rows)
	if err != nil {
		return m.fail(ctx, op, q, classify(ctx, err, ErrQuery), err)
	}

	took := time.Since(start)
	metrics.RecordQueryExecution(q.Name, float64(took.Milliseconds()))
	metrics.UpdateRowsLoaded(q.Name, t.Len())
	m.logger.Debug(ctx, "query executed",
		logger.String("query", q.Name),
		logger.Int("rows", t.Len()),
		logger.Duration("took", took),
	)
	return t, nil
}

// Close releases the pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}

func (m *MySQL) fail(ctx context.Context, op string, q Query, kind, err error) (table.Table, error) {
	dsErr := &Error{Op: op, Query: q.Name, Kind: kind, Err: err}
	metrics.RecordQueryError(q.Name, KindName(dsErr))
	m.logger.Error(ctx, "query failed", logger.String("query", q.Name), logger.Error(err))
	return table.Empty(), dsErr
}

// classify maps driver and context errors onto a kind.
func classify(ctx context.Context, err, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1044/1045: access denied, 1049: unknown database.
		switch myErr.Number {
		case 1044, 1045, 1049:
			return ErrConnect
		}
		return ErrQuery
	}
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return ErrConnect
	}
	return fallback
}

var _ Executor = (*MySQL)(nil)

// String describes the executor without leaking credentials.
func (m *MySQL) String() string {
	return fmt.Sprintf("mysql(pool, timeout=%s)", m.queryTimeout)
}
