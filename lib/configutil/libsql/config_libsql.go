// Package configlibsql opens the catalog database described by a config block.
package configlibsql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// AuthTokenEnv may hold the remote database token instead of the config file.
const AuthTokenEnv = "DIGICARDS_DB_AUTH_TOKEN"

// Struct either points to a local sqlite file or a remote libsql database. Url wins when
// both are set.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) Remote() bool {
	return config.Url != ""
}

// Describe returns where the database lives without leaking the token.
func (config Struct) Describe() string {
	if config.Remote() {
		return config.Url
	}
	return config.File
}

// OpenDB opens the database and applies `schema` to it, the schema must be idempotent.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if config.Remote() {
		db, err = config.openRemote()
	} else {
		db, err = config.openLocal()
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func (config Struct) openLocal() (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(config.File), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (config Struct) openRemote() (*sql.DB, error) {
	dsn, err := url.Parse(config.Url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	token := config.AuthToken
	if token == "" {
		token = os.Getenv(AuthTokenEnv)
	}
	if token != "" {
		query := dsn.Query()
		query.Set("authToken", token)
		dsn.RawQuery = query.Encode()
	}

	if !strings.HasPrefix(dsn.Scheme, "libsql") &&
		!strings.HasPrefix(dsn.Scheme, "http") &&
		!strings.HasPrefix(dsn.Scheme, "ws") {
		return nil, fmt.Errorf("unsupported database url scheme %q", dsn.Scheme)
	}

	return sql.Open("libsql", dsn.String())
}
