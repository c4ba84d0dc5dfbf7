package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	sessiondao "github.com/vivekxkt/trading-app/internal/dao/session"
	tradingdao "github.com/vivekxkt/trading-app/internal/dao/trading"
	"github.com/vivekxkt/trading-app/internal/models"
)

// SessionRecorder persists a trading session and its fills to the
// database. Order writes go through a buffered queue and a single drain
// goroutine so the ledger's hot path never waits on the database.
type SessionRecorder struct {
	sessions sessiondao.SessionDAOInterface
	orders   tradingdao.OrderRecordDAOInterface
	session  *models.Session
	queue    chan models.Order
	done     chan struct{}
}

func NewSessionRecorder(sessions sessiondao.SessionDAOInterface, orders tradingdao.OrderRecordDAOInterface) *SessionRecorder {
	return &SessionRecorder{
		sessions: sessions,
		orders:   orders,
		queue:    make(chan models.Order, 64),
		done:     make(chan struct{}),
	}
}

// StartSession creates the session row and starts the drain goroutine.
func (r *SessionRecorder) StartSession(seed int64, startingCash float64) error {
	session := &models.Session{
		ID:           uuid.NewString(),
		Seed:         seed,
		StartingCash: startingCash,
		Status:       models.SessionStatusRunning,
		StartedAt:    time.Now(),
	}
	if err := r.sessions.Create(session); err != nil {
		return err
	}
	r.session = session
	go r.drain()
	log.Printf("Recording session %s (seed %d)", session.ID, seed)
	return nil
}

// RecordOrder enqueues one fill for persistence. It never blocks; when
// the queue is full the order is dropped from the record, not from the
// ledger.
func (r *SessionRecorder) RecordOrder(order models.Order) {
	if r.session == nil {
		return
	}
	select {
	case r.queue <- order:
	default:
		log.Printf("Order record queue full, dropping %s", order.ID)
	}
}

// CloseSession marks the session stopped with its final account value
// and stops the drain goroutine after the queue empties.
func (r *SessionRecorder) CloseSession(finalValue float64) {
	if r.session == nil {
		return
	}
	close(r.done)
	if err := r.sessions.MarkStopped(r.session.ID, time.Now(), finalValue); err != nil {
		log.Printf("Failed to close session %s: %v", r.session.ID, err)
		return
	}
	log.Printf("Closed session %s with final value %.2f", r.session.ID, finalValue)
}

func (r *SessionRecorder) drain() {
	sessionID := r.session.ID
	for {
		select {
		case order := <-r.queue:
			order.SessionID = &sessionID
			if err := r.orders.Create(&order); err != nil {
				log.Printf("Failed to record order %s: %v", order.ID, err)
			}
		case <-r.done:
			// Flush whatever is still queued before exiting.
			for {
				select {
				case order := <-r.queue:
					order.SessionID = &sessionID
					if err := r.orders.Create(&order); err != nil {
						log.Printf("Failed to record order %s: %v", order.ID, err)
					}
				default:
					return
				}
			}
		}
	}
}
