// Package storage provides the browser-localStorage analog used by the
// storefront core: a string-keyed blob store with interchangeable drivers.
// Writes are last-write-wins; no cross-instance coordination is attempted.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound reports a missing key. Callers treat it as "no data yet".
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is the behaviour required by the domain managers. Values are opaque
// byte blobs; JSON framing is the caller's concern (see Encode/Decode).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// Well-known keys shared by the storefront managers.
const (
	KeyAuthToken = "auth_token"
	KeyLibrary   = "library"
	KeyProducts  = "products"
)

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	SQLite *SQLiteConfig
	Redis  *RedisConfig
}

// SQLiteConfig provides the database location.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
