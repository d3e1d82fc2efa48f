package objects

import (
	"time"
)

// ActivityEvent is one row of the append-only user interaction log
type ActivityEvent struct {
	ID        int64
	UserID    int64
	Action    string
	CreatedAt time.Time
}

// Action tag constants for tracked interactions
const (
	ActionStart   = "start"
	ActionMessage = "message"
	ActionHelp    = "help"
	ActionMyId    = "myid"
)
