package mailing

import (
	"fmt"
	"log"
	"mailcast/messaging"
	"mailcast/metrics"
	"mailcast/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/ratelimit"
)

// Telegram caps bots at 30 messages per second overall, stay under it
const sendsPerSecond = 25

// Store is the slice of the repository the dispatcher needs
type Store interface {
	ResolveAudience(tag string) ([]*objects.User, error)
	AppendDeliveryRecord(broadcastId, userId int64, status string) error
	SetBroadcastSentCount(id int64, count int) error
}

// Gateway sends prepared messages to Telegram
type Gateway interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dispatcher delivers one broadcast to its resolved audience, sequentially,
// recording the outcome of every attempt
type Dispatcher struct {
	store   Store
	gateway Gateway
	limiter ratelimit.Limiter
}

func NewDispatcher(store Store, gateway Gateway) *Dispatcher {
	log.Println("[MAILING] Creating new dispatcher")
	return &Dispatcher{
		store:   store,
		gateway: gateway,
		limiter: ratelimit.New(sendsPerSecond),
	}
}

// Dispatch sends the broadcast to every user in its audience and returns
// (successful, total). An empty audience returns (0, 0) without touching
// the database. A single recipient failure never aborts the run.
func (d *Dispatcher) Dispatch(b *objects.Broadcast) (int, int, error) {
	log.Printf("[MAILING] Dispatching broadcast %d '%s' to audience '%s'",
		b.ID, b.Title, b.AudienceTag)

	users, err := d.store.ResolveAudience(b.AudienceTag)
	if err != nil {
		log.Printf("[MAILING] ERROR resolving audience '%s': %v", b.AudienceTag, err)
		return 0, 0, err
	}

	total := len(users)
	if total == 0 {
		log.Printf("[MAILING] Broadcast %d has an empty audience, nothing to send", b.ID)
		metrics.RecordBroadcastRun(b.AudienceTag, true)
		return 0, 0, nil
	}

	log.Printf("[MAILING] Broadcast %d resolved to %d recipient(s)", b.ID, total)

	success := 0
	for _, user := range users {
		d.limiter.Take()

		msg := BuildMessage(b, user.UserId)
		_, sendErr := d.gateway.Send(msg)

		if sendErr != nil {
			log.Printf("[MAILING] ERROR sending broadcast %d to user %d: %v",
				b.ID, user.UserId, sendErr)
			metrics.RecordBroadcastDelivery(b.Kind, b.AudienceTag, objects.DeliveryStatusFailed)
			if recErr := d.store.AppendDeliveryRecord(b.ID, user.UserId, objects.DeliveryStatusFailed); recErr != nil {
				log.Printf("[MAILING] ERROR recording failed delivery for user %d: %v", user.UserId, recErr)
			}
			continue
		}

		success++
		metrics.RecordBroadcastDelivery(b.Kind, b.AudienceTag, objects.DeliveryStatusSent)
		if recErr := d.store.AppendDeliveryRecord(b.ID, user.UserId, objects.DeliveryStatusSent); recErr != nil {
			log.Printf("[MAILING] ERROR recording sent delivery for user %d: %v", user.UserId, recErr)
		}
	}

	// The cached counter is written exactly once, after the loop
	if err := d.store.SetBroadcastSentCount(b.ID, success); err != nil {
		log.Printf("[MAILING] ERROR writing sent count for broadcast %d: %v", b.ID, err)
		return success, total, err
	}

	metrics.RecordBroadcastRun(b.AudienceTag, false)
	log.Printf("[MAILING] Broadcast %d dispatched: %d/%d delivered", b.ID, success, total)
	return success, total, nil
}

// BuildMessage prepares the Telegram message for one recipient.
// The admin preview path reuses it so operators see exactly what goes out.
func BuildMessage(b *objects.Broadcast, chatID int64) tgbotapi.Chattable {
	if !b.HasMedia() {
		return messaging.NewHTMLMessage(chatID, RenderText(b))
	}

	caption := RenderText(b)

	switch b.Kind {
	case objects.KindPhoto:
		msg := tgbotapi.NewPhotoShare(chatID, b.MediaFileID)
		msg.Caption = caption
		msg.ParseMode = "HTML"
		return msg
	case objects.KindVideo:
		msg := tgbotapi.NewVideoShare(chatID, b.MediaFileID)
		msg.Caption = caption
		msg.ParseMode = "HTML"
		return msg
	case objects.KindAudio:
		msg := tgbotapi.NewAudioShare(chatID, b.MediaFileID)
		msg.Caption = caption
		msg.ParseMode = "HTML"
		return msg
	case objects.KindVoice:
		msg := tgbotapi.NewVoiceShare(chatID, b.MediaFileID)
		msg.Caption = caption
		msg.ParseMode = "HTML"
		return msg
	default:
		// Documents and animations both go out as document shares
		msg := tgbotapi.NewDocumentShare(chatID, b.MediaFileID)
		msg.Caption = caption
		msg.ParseMode = "HTML"
		return msg
	}
}

// RenderText formats the user-facing broadcast text (or media caption)
func RenderText(b *objects.Broadcast) string {
	title := messaging.Escape(b.Title)
	body := messaging.Escape(b.Body)

	if title == "" {
		return body
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s", title, body)
}
