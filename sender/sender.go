package sender

import (
	"encoding/json"
	"log"
	"mailcast/context"
	"mailcast/metrics"
	"mailcast/rabbit"
	"os"
	"regexp"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/streadway/amqp"
)

type Sender struct {
	context *context.Context
}

func NewSender(context *context.Context) *Sender {
	log.Println("[SENDER] Creating new message sender")
	return &Sender{
		context: context,
	}
}

func (s *Sender) Handler(data []byte, headers amqp.Table) {
	// Check message type from headers
	if messageType, ok := headers["message_type"]; ok {
		switch messageType {
		case "callback_answer":
			var callbackBag rabbit.CallbackAnswerBag
			if err := json.Unmarshal(data, &callbackBag); err != nil {
				log.Printf("[SENDER] Failed to unmarshal callback answer: %v", err)
				return
			}
			log.Printf("[SENDER] Processing callback answer %s with priority %d",
				callbackBag.CallbackAnswer.CallbackQueryID, callbackBag.Priority)
			s.handleCallbackAnswer(&callbackBag)
			return
		case "edit_message":
			var editBag rabbit.EditMessageBag
			if err := json.Unmarshal(data, &editBag); err != nil {
				log.Printf("[SENDER] Failed to unmarshal edit message: %v", err)
				return
			}
			log.Printf("[SENDER] Processing message edit for message %d in chat %d with priority %d",
				editBag.EditMessage.MessageID, editBag.EditMessage.ChatID, editBag.Priority)
			s.handleEditMessage(&editBag)
			return
		case "document":
			var documentBag rabbit.DocumentBag
			if err := json.Unmarshal(data, &documentBag); err != nil {
				log.Printf("[SENDER] Failed to unmarshal document: %v", err)
				return
			}
			log.Printf("[SENDER] Processing document upload %s for chat %d with priority %d",
				documentBag.FilePath, documentBag.ChatID, documentBag.Priority)
			s.handleDocument(&documentBag)
			return
		}
	}

	// Handle regular message
	var messageBag rabbit.MessageBag
	if err := json.Unmarshal(data, &messageBag); err != nil {
		log.Printf("[SENDER] Failed to unmarshal regular message: %v", err)
		return
	}
	log.Printf("[SENDER] Processing regular message for chat %d with priority %d",
		messageBag.Message.ChatID, messageBag.Priority)
	s.handleRegularMessage(&messageBag)
}

func (s *Sender) handleRegularMessage(messageBag *rabbit.MessageBag) {
	log.Printf("[SENDER] Processing regular message for chat %d", messageBag.Message.ChatID)

	startTime := time.Now()

	// Send message via Telegram Bot API
	_, err := s.context.GetBot().Send(messageBag.Message)

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[SENDER] ERROR sending Telegram message to chat %d: %v (duration: %v)",
			messageBag.Message.ChatID, err, duration)
		metrics.RecordTelegramMessage("regular", "failed", strconv.Itoa(extractErrorCode(err)))
	} else {
		log.Printf("[SENDER] Successfully sent message to chat %d (duration: %v)",
			messageBag.Message.ChatID, duration)
		metrics.RecordTelegramMessage("regular", "sent", "none")
	}
}

func (s *Sender) handleCallbackAnswer(callbackBag *rabbit.CallbackAnswerBag) {
	log.Printf("[SENDER] Processing callback answer %s", callbackBag.CallbackAnswer.CallbackQueryID)

	startTime := time.Now()

	// Send callback answer via Telegram Bot API
	_, err := s.context.GetBot().AnswerCallbackQuery(callbackBag.CallbackAnswer)

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[SENDER] ERROR answering callback query %s: %v (duration: %v)",
			callbackBag.CallbackAnswer.CallbackQueryID, err, duration)
		metrics.RecordTelegramMessage("callback_answer", "failed", strconv.Itoa(extractErrorCode(err)))
	} else {
		log.Printf("[SENDER] Successfully answered callback query %s (duration: %v)",
			callbackBag.CallbackAnswer.CallbackQueryID, duration)
		metrics.RecordTelegramMessage("callback_answer", "sent", "none")
	}
}

func (s *Sender) handleEditMessage(editBag *rabbit.EditMessageBag) {
	log.Printf("[SENDER] Processing message edit for message %d in chat %d",
		editBag.EditMessage.MessageID, editBag.EditMessage.ChatID)

	startTime := time.Now()

	// Send edit message via Telegram Bot API
	_, err := s.context.GetBot().Send(editBag.EditMessage)

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[SENDER] ERROR editing message %d in chat %d: %v (duration: %v)",
			editBag.EditMessage.MessageID, editBag.EditMessage.ChatID, err, duration)
		metrics.RecordTelegramMessage("edit_message", "failed", strconv.Itoa(extractErrorCode(err)))
	} else {
		log.Printf("[SENDER] Successfully edited message %d in chat %d (duration: %v)",
			editBag.EditMessage.MessageID, editBag.EditMessage.ChatID, duration)
		metrics.RecordTelegramMessage("edit_message", "sent", "none")
	}
}

func (s *Sender) handleDocument(documentBag *rabbit.DocumentBag) {
	log.Printf("[SENDER] Processing document upload %s for chat %d",
		documentBag.FilePath, documentBag.ChatID)

	msg := tgbotapi.NewDocumentUpload(documentBag.ChatID, documentBag.FilePath)
	if documentBag.Caption != "" {
		msg.Caption = documentBag.Caption
	}

	startTime := time.Now()

	// Upload document via Telegram Bot API
	_, err := s.context.GetBot().Send(msg)

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("[SENDER] ERROR uploading document %s to chat %d: %v (duration: %v)",
			documentBag.FilePath, documentBag.ChatID, err, duration)
		metrics.RecordTelegramMessage("document", "failed", strconv.Itoa(extractErrorCode(err)))
	} else {
		log.Printf("[SENDER] Successfully uploaded document %s to chat %d (duration: %v)",
			documentBag.FilePath, documentBag.ChatID, duration)
		metrics.RecordTelegramMessage("document", "sent", "none")
	}

	// Temporary files (generated reports) are removed after a successful upload
	if documentBag.DeleteAfterSend && err == nil {
		if removeErr := os.Remove(documentBag.FilePath); removeErr != nil {
			log.Printf("[SENDER] ERROR removing uploaded file %s: %v", documentBag.FilePath, removeErr)
		} else {
			log.Printf("[SENDER] Removed uploaded file %s", documentBag.FilePath)
		}
	}
}

func (s *Sender) Start() {
	log.Println("[SENDER] Starting message sender service")
	log.Println("[SENDER] Registering handler with RabbitMQ consumer")

	// Register the handler with RabbitMQ consumer
	// The rate limiting is handled in the RabbitClient
	s.context.RabbitConsume.RegisterHandler(s.Handler)

	log.Println("[SENDER] Message sender service started successfully")
}

// httpErrorCodeRegex matches HTTP status codes (4xx or 5xx) in error messages
// Uses negative lookbehind/lookahead to avoid matching phone numbers or other contexts
var httpErrorCodeRegex = regexp.MustCompile(`(?:^|\s|:|\(|-)([4-5]\d{2})(?:\s|$|:|!|\)|,)`)

// extractErrorCode extracts HTTP error code from Telegram API error using regex
func extractErrorCode(err error) int {
	if err == nil {
		return 200
	}

	// Use regex to find HTTP error codes (4xx or 5xx) in error message
	errStr := err.Error()
	matches := httpErrorCodeRegex.FindStringSubmatch(errStr)

	if len(matches) >= 2 {
		// Parse the captured HTTP code
		if code, parseErr := strconv.Atoi(matches[1]); parseErr == nil {
			return code
		}
	}

	return 0 // Unknown error - no HTTP code found
}
