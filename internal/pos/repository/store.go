package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

// conn is the handle shared by every repository of one store. Repositories
// bound to a transaction carry the transaction as db but share closed.
type conn struct {
	db     *gorm.DB
	closed *atomic.Bool
}

func (c conn) session(ctx context.Context) (*gorm.DB, error) {
	if c.db == nil || c.closed.Load() {
		return nil, domain.ErrStoreUnavailable
	}
	return c.db.WithContext(ctx), nil
}

// Store is the gorm-backed persistent store
type Store struct {
	conn conn
}

var _ domain.Store = (*Store)(nil)

// NewStore wraps an open gorm connection. A nil db gives a store on which
// every operation reports ErrStoreUnavailable.
func NewStore(db *gorm.DB) *Store {
	return &Store{conn: conn{db: db, closed: &atomic.Bool{}}}
}

// Products returns the product repository
func (s *Store) Products() domain.ProductRepository {
	return &GormProductRepository{conn: s.conn}
}

// Sales returns the sale repository
func (s *Store) Sales() domain.SaleRepository {
	return &GormSaleRepository{conn: s.conn}
}

// Users returns the user repository
func (s *Store) Users() domain.UserRepository {
	return &GormUserRepository{conn: s.conn}
}

// Reports returns the read-only aggregate queries
func (s *Store) Reports() domain.ReportRepository {
	return &GormReportRepository{conn: s.conn}
}

// RunTransaction executes work with repositories bound to a single transaction
func (s *Store) RunTransaction(ctx context.Context, work func(tx domain.Tx) error) error {
	ctx, span := startSpan(ctx, "store.RunTransaction")
	defer span.End()

	db, err := s.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return work(&txRepositories{conn: conn{db: tx, closed: s.conn.closed}})
	})
	return spanError(span, err)
}

// Ping verifies the connection is usable
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn.session(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection; later calls report ErrStoreUnavailable
func (s *Store) Close() error {
	if s.conn.db == nil || s.conn.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.conn.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	logger.Logger.Info().Msg("Closing store")
	return sqlDB.Close()
}

type txRepositories struct {
	conn conn
}

func (t *txRepositories) Products() domain.ProductRepository {
	return &GormProductRepository{conn: t.conn}
}

func (t *txRepositories) Sales() domain.SaleRepository {
	return &GormSaleRepository{conn: t.conn}
}

func (t *txRepositories) Users() domain.UserRepository {
	return &GormUserRepository{conn: t.conn}
}
