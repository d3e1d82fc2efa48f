package objects

import (
	"time"
)

// DeliveryRecord is the append-only outcome of one broadcast send attempt.
// Exactly one record exists per (broadcast, recipient) attempt; records are
// never updated and are the ground truth for delivery rates.
type DeliveryRecord struct {
	ID          int64
	BroadcastID int64
	UserID      int64
	Status      string // 'sent' or 'failed'
	CreatedAt   time.Time
}

// Delivery status constants
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// NewDeliveryRecord creates a delivery record for one dispatch attempt
func NewDeliveryRecord(broadcastID, userID int64, status string) *DeliveryRecord {
	return &DeliveryRecord{
		BroadcastID: broadcastID,
		UserID:      userID,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
}
