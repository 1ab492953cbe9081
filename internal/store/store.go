package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Document keys. Each key holds one whole JSON document.
const (
	KeyOrders   = "orders"
	KeyProducts = "products"
	KeyExpenses = "expenses"
	KeyAlerted  = "alerted-orders"
	KeyTheme    = "theme"
	KeyCurrency = "currency"
)

var Keys = []string{KeyOrders, KeyProducts, KeyExpenses, KeyAlerted, KeyTheme, KeyCurrency}

var ErrUnknownDriver = errors.New("unknown storage driver")

// Documents is a key-value store of whole JSON documents. Put replaces the
// stored document; there are no partial updates.
type Documents interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open connects the configured backend. For sqlite the dsn is a file path,
// for postgres a connection string; memory ignores it.
func Open(ctx context.Context, driver, dsn string) (Documents, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}
