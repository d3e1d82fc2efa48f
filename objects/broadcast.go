package objects

import (
	"time"
)

// Broadcast represents one composed mailing intended for a resolved audience
type Broadcast struct {
	ID          int64
	Title       string
	Body        string
	Kind        string // one of the Kind* constants
	MediaFileID string // Telegram file_id, empty for text broadcasts
	AudienceTag string // one of the Audience* constants
	IsTemplate  bool   // templates are cloned on send, never dispatched directly
	SentCount   int    // cached summary, written once after the dispatch loop
	CreatedAt   time.Time
}

// Body kind constants
const (
	KindText      = "text"
	KindPhoto     = "photo"
	KindVideo     = "video"
	KindDocument  = "document"
	KindAudio     = "audio"
	KindVoice     = "voice"
	KindAnimation = "animation"
)

// Audience tag constants
const (
	AudienceAll        = "all"
	AudienceActiveWeek = "active_week"
	AudienceNewToday   = "new_today"
	AudienceNewWeek    = "new_week"
)

// AudienceTags lists the recognized tags in admin keyboard order
var AudienceTags = []string{
	AudienceAll,
	AudienceActiveWeek,
	AudienceNewToday,
	AudienceNewWeek,
}

// AudienceTagName returns the operator-facing label for an audience tag
func AudienceTagName(tag string) string {
	switch tag {
	case AudienceAll:
		return "все пользователи"
	case AudienceActiveWeek:
		return "активные за неделю"
	case AudienceNewToday:
		return "новые сегодня"
	case AudienceNewWeek:
		return "новые за неделю"
	}
	return tag
}

// IsValidAudienceTag reports whether the tag is recognized.
// Unknown tags still resolve to an empty audience rather than an error.
func IsValidAudienceTag(tag string) bool {
	for _, t := range AudienceTags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasMedia reports whether the broadcast carries a media attachment
func (b *Broadcast) HasMedia() bool {
	return b.Kind != KindText && b.MediaFileID != ""
}

// NewBroadcast creates a broadcast record ready to be persisted
func NewBroadcast(title, body, kind, mediaFileID, audienceTag string, isTemplate bool) *Broadcast {
	return &Broadcast{
		Title:       title,
		Body:        body,
		Kind:        kind,
		MediaFileID: mediaFileID,
		AudienceTag: audienceTag,
		IsTemplate:  isTemplate,
		CreatedAt:   time.Now().UTC(),
	}
}

// CloneForSend copies a template into a fresh dispatchable broadcast.
// The clone gets its own row and delivery records; the template stays intact.
func (b *Broadcast) CloneForSend(audienceTag string) *Broadcast {
	return NewBroadcast(b.Title, b.Body, b.Kind, b.MediaFileID, audienceTag, false)
}
