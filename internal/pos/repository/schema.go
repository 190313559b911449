package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

// tableRevision lists a table and the columns added to it after its first
// release. Tables are created in dependency order.
type tableRevision struct {
	model   schema.Tabler
	columns []string
}

var schemaRevisions = []tableRevision{
	{model: &domain.User{}, columns: []string{"role"}},
	{model: &domain.Product{}, columns: []string{"image_path"}},
	{model: &domain.Sale{}, columns: []string{"user_id"}},
	{model: &domain.SaleItem{}},
}

// InitializeSchema creates missing tables and adds missing additive columns.
// Existing columns are inspected first, so it is safe on every start.
// Tables written by earlier releases are adopted whatever the case of their
// names, since SQLite resolves identifiers case-insensitively.
func (s *Store) InitializeSchema(ctx context.Context) error {
	ctx, span := startSpan(ctx, "store.InitializeSchema")
	defer span.End()

	db, err := s.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}
	m := db.Migrator()

	for _, rev := range schemaRevisions {
		name := rev.model.TableName()
		existing, found, err := lookupTable(db, name)
		if err != nil {
			return spanError(span, fmt.Errorf("failed to inspect table %s: %w", name, err))
		}
		if !found {
			if err := m.CreateTable(rev.model); err != nil {
				return spanError(span, fmt.Errorf("failed to create table %s: %w", name, err))
			}
			logger.Info(ctx).Str("table", name).Msg("Created table")
			continue
		}
		if existing != name {
			logger.Info(ctx).
				Str("table", name).
				Str("existing", existing).
				Msg("Adopted existing table")
		}

		for _, column := range rev.columns {
			if m.HasColumn(existing, column) {
				continue
			}
			if err := m.AddColumn(rev.model, column); err != nil {
				return spanError(span, fmt.Errorf("failed to add column %s.%s: %w", name, column, err))
			}
			logger.Info(ctx).
				Str("table", name).
				Str("column", column).
				Msg("Added column")
		}
	}

	return nil
}

// lookupTable returns the stored name of the table called name. On SQLite
// the match ignores case.
func lookupTable(db *gorm.DB, name string) (string, bool, error) {
	if db.Dialector.Name() != "sqlite" {
		return name, db.Migrator().HasTable(name), nil
	}

	var stored []string
	err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", name).
		Scan(&stored).Error
	if err != nil {
		return "", false, err
	}
	if len(stored) == 0 {
		return "", false, nil
	}
	return stored[0], true, nil
}
