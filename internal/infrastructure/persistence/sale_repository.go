package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements revenue.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*revenue.Sale, error) {
	var sale revenue.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &sale, nil
}

// Save persists the sale and its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *revenue.Sale) error {
	return translateError(r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(sale).Error)
}

// WithTx returns a repository bound to an in-flight unit of work
func (r *GormSaleRepository) WithTx(provider any) revenue.SaleRepository {
	if tx, ok := provider.(*gorm.DB); ok {
		return &GormSaleRepository{db: tx}
	}
	return r
}

// GormStockRepository implements revenue.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindForUpdate loads a stock item under a row lock so concurrent sales
// cannot both pass the quantity check
func (r *GormStockRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*revenue.StockItem, error) {
	var item revenue.StockItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &item, nil
}

// Save persists the stock item
func (r *GormStockRepository) Save(ctx context.Context, item *revenue.StockItem) error {
	return translateError(r.db.WithContext(ctx).Save(item).Error)
}

// WithTx returns a repository bound to an in-flight unit of work
func (r *GormStockRepository) WithTx(provider any) revenue.StockRepository {
	if tx, ok := provider.(*gorm.DB); ok {
		return &GormStockRepository{db: tx}
	}
	return r
}
