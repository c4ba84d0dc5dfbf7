package trading

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vivekxkt/trading-app/internal/models"
)

// OrderRecordDAO handles database operations for recorded fills
type OrderRecordDAO struct {
	db *gorm.DB
}

// OrderRecordDAOInterface defines the contract for order record access
type OrderRecordDAOInterface interface {
	Create(order *models.Order) error
	ListBySession(sessionID string, limit int) ([]models.Order, error)
}

// NewOrderRecordDAO creates a new order record DAO instance
func NewOrderRecordDAO(db *gorm.DB) OrderRecordDAOInterface {
	return &OrderRecordDAO{
		db: db,
	}
}

// Create inserts one recorded fill
func (dao *OrderRecordDAO) Create(order *models.Order) error {
	if err := dao.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order record: %w", err)
	}
	return nil
}

// ListBySession gets the fills recorded for one session, newest first
func (dao *OrderRecordDAO) ListBySession(sessionID string, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := dao.db.Where("session_id = ?", sessionID).Order("placed_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list order records: %w", err)
	}

	return orders, nil
}
