package objects

import (
	"time"
)

// DraftTTL is how long an in-progress compose draft stays valid
const DraftTTL = 30 * time.Minute

// Draft holds the in-progress state of the admin compose flow.
// One draft per composing admin, persisted so the flow survives restarts.
type Draft struct {
	AdminID     int64
	Title       string
	Body        string
	Kind        string
	MediaFileID string
	AudienceTag string
	UpdatedAt   time.Time
}

// NewDraft starts an empty draft for the given admin
func NewDraft(adminID int64) *Draft {
	return &Draft{
		AdminID:   adminID,
		Kind:      KindText,
		UpdatedAt: time.Now().UTC(),
	}
}

// Expired reports whether the draft is older than DraftTTL
func (d *Draft) Expired() bool {
	return time.Since(d.UpdatedAt) > DraftTTL
}

// ToBroadcast converts a completed draft into a broadcast record
func (d *Draft) ToBroadcast(isTemplate bool) *Broadcast {
	return NewBroadcast(d.Title, d.Body, d.Kind, d.MediaFileID, d.AudienceTag, isTemplate)
}
