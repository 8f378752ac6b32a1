package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"

	"cpt/internal/config"
	"cpt/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS test_suites (
		source VARCHAR(512) NOT NULL PRIMARY KEY,
		num_cases INT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS test_cases (
		source VARCHAR(512) NOT NULL,
		position INT NOT NULL,
		input MEDIUMTEXT NOT NULL,
		output MEDIUMTEXT NOT NULL,
		PRIMARY KEY (source, position)
	) DEFAULT CHARSET=utf8mb4`,
}

// MySQLStorage keeps test cases in a MySQL database, keyed by the absolute source path
type MySQLStorage struct {
	cfg *config.Config
	db  *sql.DB
}

// NewMySQLStorage opens a connection pool to the configured database.
// No connection is made until the first query.
func NewMySQLStorage(cfg *config.Config) (*MySQLStorage, error) {
	if !IsValidDatabaseName(cfg.MySQL.Database) {
		return nil, fmt.Errorf("invalid database name: %q", cfg.MySQL.Database)
	}
	db, err := sql.Open("mysql", DSN(cfg.MySQL, true))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &MySQLStorage{cfg: cfg, db: db}, nil
}

// DSN builds the driver connection string. Without withDB it targets the server only.
func DSN(c config.MySQLConfig, withDB bool) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	if withDB {
		mc.DBName = c.Database
	}
	mc.ParseTime = true
	return mc.FormatDSN()
}

// Migrate creates the database and the test case tables if they do not exist
func (s *MySQLStorage) Migrate(ctx context.Context) error {
	server, err := sql.Open("mysql", DSN(s.cfg.MySQL, false))
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer server.Close()

	if err := server.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := databaseExists(ctx, server, s.cfg.MySQL.Database)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", s.cfg.MySQL.Database, err)
	}
	if !exists {
		// Name was validated in NewMySQLStorage
		query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4", s.cfg.MySQL.Database)
		if _, err := server.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create database %s: %w", s.cfg.MySQL.Database, err)
		}
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// IsValidDatabaseName accepts 1-64 characters of letters, digits, underscore and dollar
func IsValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		default:
			return false
		}
	}
	return true
}

func (s *MySQLStorage) key(source string) string {
	if abs, err := filepath.Abs(source); err == nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(source)
}

// Load reads the suite of source ordered by position
func (s *MySQLStorage) Load(source string) (*domain.TestSuite, error) {
	ctx := context.Background()
	key := s.key(source)

	var numCases int
	err := s.db.QueryRowContext(ctx, "SELECT num_cases FROM test_suites WHERE source = ?", key).Scan(&numCases)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query suite: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT input, output FROM test_cases WHERE source = ? ORDER BY position", key)
	if err != nil {
		return nil, fmt.Errorf("query test cases: %w", err)
	}
	defer rows.Close()

	suite := &domain.TestSuite{Cases: make([]domain.TestCase, 0, numCases)}
	for rows.Next() {
		var tc domain.TestCase
		if err := rows.Scan(&tc.Input, &tc.ExpectedOutput); err != nil {
			return nil, fmt.Errorf("scan test case: %w", err)
		}
		suite.Cases = append(suite.Cases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read test cases: %w", err)
	}
	if suite.Count() != numCases {
		return nil, fmt.Errorf("suite %s lists %d cases but %d are stored", key, numCases, suite.Count())
	}
	return suite, nil
}

// Save replaces the stored suite of source in one transaction
func (s *MySQLStorage) Save(source string, suite *domain.TestSuite) error {
	ctx := context.Background()
	key := s.key(source)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM test_cases WHERE source = ?", key); err != nil {
		return fmt.Errorf("clear test cases: %w", err)
	}
	upsert := "INSERT INTO test_suites (source, num_cases) VALUES (?, ?) ON DUPLICATE KEY UPDATE num_cases = VALUES(num_cases)"
	if _, err := tx.ExecContext(ctx, upsert, key, suite.Count()); err != nil {
		return fmt.Errorf("save suite: %w", err)
	}

	if suite.Count() > 0 {
		placeholders := make([]string, 0, suite.Count())
		args := make([]any, 0, suite.Count()*4)
		for i, tc := range suite.Cases {
			placeholders = append(placeholders, "(?, ?, ?, ?)")
			args = append(args, key, i, tc.Input, tc.ExpectedOutput)
		}
		insert := "INSERT INTO test_cases (source, position, input, output) VALUES " + strings.Join(placeholders, ", ")
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("save test cases: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Append adds tc to the end of the suite of source
func (s *MySQLStorage) Append(source string, tc domain.TestCase) (int, error) {
	return appendCase(s, source, tc)
}

// Close releases the connection pool
func (s *MySQLStorage) Close() error {
	return s.db.Close()
}
