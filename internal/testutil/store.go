// Package testutil provides an in-memory store and a controllable clock for tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/repository"
	"github.com/tair/till-pos/pkg/database"
)

// OpenDB opens a private in-memory SQLite database with foreign keys on
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewGormConnection(database.Config{Driver: database.DriverSQLite})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore returns an initialized store and the gorm handle behind it
func NewStore(t testing.TB) (*repository.Store, *gorm.DB) {
	t.Helper()

	db := OpenDB(t)
	store := repository.NewStore(db)
	require.NoError(t, store.InitializeSchema(context.Background()))
	return store, db
}

// SeedProduct inserts a product priced from a decimal string
func SeedProduct(t testing.TB, store domain.Store, name, price string, quantity int) domain.Product {
	t.Helper()

	product := domain.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
	require.NoError(t, store.Products().Create(context.Background(), &product))
	return product
}

// SeedUser inserts a user with an already computed digest
func SeedUser(t testing.TB, store domain.Store, username, digest, role string) domain.User {
	t.Helper()

	user := domain.User{Username: username, PasswordHash: digest, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), &user))
	return user
}

// Clock is a settable domain.Clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the frozen time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
