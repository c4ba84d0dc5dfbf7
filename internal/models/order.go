package models

import (
	"time"
)

type Side string
type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"

	// OrderStatusFilled is the only order state: every order fills
	// immediately at the last traded price, partial fills are not modeled.
	OrderStatusFilled OrderStatus = "FILLED"
)

// Charges is the cost breakdown for a single trade.
type Charges struct {
	Turnover  float64 `json:"turnover"`
	Brokerage float64 `json:"brokerage"`
	STT       float64 `json:"stt"`
	Exchange  float64 `json:"exchange"`
	SEBI      float64 `json:"sebi"`
	StampDuty float64 `json:"stampDuty"`
	GST       float64 `json:"gst"`
	DPCharges float64 `json:"dpCharges"`
	Total     float64 `json:"total"`
}

// Order is a filled trade record. The ledger keeps the most recent orders
// newest first; when session recording is enabled each order is also
// appended to the orders table.
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	SessionID *string     `json:"session_id,omitempty" gorm:"index"`
	Symbol    string      `json:"symbol" gorm:"not null;index"`
	Side      Side        `json:"side" gorm:"not null"`
	Quantity  float64     `json:"quantity" gorm:"not null"`
	FillPrice float64     `json:"fill_price" gorm:"not null"`
	FeesTotal float64     `json:"fees_total" gorm:"not null"`
	Status    OrderStatus `json:"status" gorm:"not null"`
	PlacedAt  time.Time   `json:"placed_at" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Holding is an open position in one symbol. StopLoss and Target stay nil
// until a buy supplies them; once set they survive partial sells and only
// disappear with the position itself.
type Holding struct {
	Symbol   string   `json:"symbol"`
	Quantity float64  `json:"quantity"`
	AvgPrice float64  `json:"avgPrice"`
	StopLoss *float64 `json:"stopLoss,omitempty"`
	Target   *float64 `json:"target,omitempty"`
}

// LedgerSnapshot is a point-in-time copy of the full account state.
// Holdings are sorted by symbol, orders newest first.
type LedgerSnapshot struct {
	Cash     float64   `json:"cash"`
	Holdings []Holding `json:"holdings"`
	Orders   []Order   `json:"orders"`
}
