package session

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/vivekxkt/trading-app/internal/models"
)

// SessionDAO handles database operations for trading sessions
type SessionDAO struct {
	db *gorm.DB
}

// SessionDAOInterface defines the contract for session data access
type SessionDAOInterface interface {
	Create(session *models.Session) error
	MarkStopped(sessionID string, stoppedAt time.Time, finalValue float64) error
	GetByID(sessionID string) (*models.Session, error)
	ListRecent(limit int) ([]models.Session, error)
}

// NewSessionDAO creates a new session DAO instance
func NewSessionDAO(db *gorm.DB) SessionDAOInterface {
	return &SessionDAO{
		db: db,
	}
}

// Create inserts a new session record
func (s *SessionDAO) Create(session *models.Session) error {
	if err := s.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}

	log.Printf("Created session record: ID=%s, Seed=%d, StartingCash=%.2f",
		session.ID, session.Seed, session.StartingCash)
	return nil
}

// MarkStopped closes a session with its end time and final account value
func (s *SessionDAO) MarkStopped(sessionID string, stoppedAt time.Time, finalValue float64) error {
	result := s.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":      models.SessionStatusStopped,
			"stopped_at":  stoppedAt,
			"final_value": finalValue,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("session record not found: %s", sessionID)
	}

	log.Printf("Updated session %s: status=%s, finalValue=%.2f",
		sessionID, models.SessionStatusStopped, finalValue)
	return nil
}

// GetByID retrieves a session record by ID
func (s *SessionDAO) GetByID(sessionID string) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}
	return &session, nil
}

// ListRecent retrieves the most recent sessions, newest first
func (s *SessionDAO) ListRecent(limit int) ([]models.Session, error) {
	var sessions []models.Session
	query := s.db.Order("started_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}
