package models

import (
	"time"
)

type SessionStatus string

const (
	SessionStatusRunning SessionStatus = "running"
	SessionStatusStopped SessionStatus = "stopped"
)

// Session is one simulator run, recorded when a database is configured.
// Rows are write-only history: nothing is loaded back on restart.
type Session struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	Seed         int64         `json:"seed" gorm:"not null"`
	StartingCash float64       `json:"starting_cash" gorm:"not null"`
	Status       SessionStatus `json:"status" gorm:"not null;default:running"`
	StartedAt    time.Time     `json:"started_at" gorm:"not null"`
	StoppedAt    *time.Time    `json:"stopped_at,omitempty"`
	FinalValue   *float64      `json:"final_value,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
