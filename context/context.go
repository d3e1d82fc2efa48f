package context

import (
	"log"
	"mailcast/config"
	"mailcast/rabbit"
	"mailcast/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Context struct {
	bot           *tgbotapi.BotAPI // private - only accessible through methods
	Repo          *repository.Repository
	RabbitPublish *rabbit.RabbitClient // for publishing only
	RabbitConsume *rabbit.RabbitClient // for consuming only
	Config        *config.Config
}

// Send is a drop-in replacement for telegram Send method, posts with high priority
func (context *Context) Send(message tgbotapi.MessageConfig) {
	log.Printf("[CONTEXT] Sending message to user %d via RabbitMQ with high priority", message.ChatID)

	context.RabbitPublish.PublishTgMessage(rabbit.MessageBag{
		Message:  message,
		Priority: 220, // high priority for user messages, but lower than callbacks
	})
}

// SendWithPriority sends a message with specified priority through RabbitMQ
func (context *Context) SendWithPriority(message tgbotapi.MessageConfig, priority uint8) {
	log.Printf("[CONTEXT] Sending message to user %d via RabbitMQ with priority %d", message.ChatID, priority)

	context.RabbitPublish.PublishTgMessage(rabbit.MessageBag{
		Message:  message,
		Priority: priority,
	})
}

// AnswerCallbackQuery answers a callback query through RabbitMQ with highest priority
func (context *Context) AnswerCallbackQuery(callback tgbotapi.CallbackConfig) error {
	log.Printf("[CONTEXT] Sending callback answer %s via RabbitMQ with highest priority", callback.CallbackQueryID)

	return context.RabbitPublish.PublishCallbackAnswer(rabbit.CallbackAnswerBag{
		CallbackAnswer: callback,
		Priority:       255, // Highest priority for instant response
	})
}

// EditMessage edits a message through RabbitMQ
func (context *Context) EditMessage(editMsg tgbotapi.EditMessageTextConfig) error {
	log.Printf("[CONTEXT] Sending message edit for message %d in chat %d via RabbitMQ", editMsg.MessageID, editMsg.ChatID)

	return context.RabbitPublish.PublishEditMessage(rabbit.EditMessageBag{
		EditMessage: editMsg,
		Priority:    200, // High priority for edits
	})
}

// SendDocument queues a local file for upload to the given chat. The sender
// removes the file after a successful upload, so the path must stay valid
// until then.
func (context *Context) SendDocument(chatID int64, filePath, caption string) error {
	log.Printf("[CONTEXT] Sending document %s to chat %d via RabbitMQ", filePath, chatID)

	return context.RabbitPublish.PublishDocument(rabbit.DocumentBag{
		ChatID:          chatID,
		FilePath:        filePath,
		Caption:         caption,
		DeleteAfterSend: true,
		Priority:        150, // Documents are heavy, keep them below user replies
	})
}

// GetBot returns the bot instance - ONLY for the sender and mailing packages,
// which perform the actual Telegram API calls
func (context *Context) GetBot() *tgbotapi.BotAPI {
	return context.bot
}

// SetBot sets the bot instance - used during initialization
func (context *Context) SetBot(bot *tgbotapi.BotAPI) {
	context.bot = bot
}
