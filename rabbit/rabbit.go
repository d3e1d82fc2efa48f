package rabbit

import (
	"encoding/json"
	"log"
	"mailcast/metrics"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/streadway/amqp"
	"go.uber.org/ratelimit"
)

// Bags carry the full 0..255 priority range, the queue must not cap it
var queueArgs = amqp.Table{
	"x-max-priority": int32(255),
}

// RabbitClient is shared between the producer loop and the background
// dispatch/report goroutines, so every touch of connection/channel
// happens under mu.
type RabbitClient struct {
	url        string
	queueName  string
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
}

type Handler func(data []byte, headers amqp.Table)

type MessageBag struct {
	Message  tgbotapi.MessageConfig
	Priority uint8 // 0..255
}

// CallbackAnswerBag represents a callback query answer
type CallbackAnswerBag struct {
	CallbackAnswer tgbotapi.CallbackConfig
	Priority       uint8 // Should always be 255 for instant response
}

// EditMessageBag represents a message edit operation
type EditMessageBag struct {
	EditMessage tgbotapi.EditMessageTextConfig
	Priority    uint8
}

// DocumentBag represents a local file to be uploaded to a chat.
// Used for the generated Excel reports.
type DocumentBag struct {
	ChatID          int64
	FilePath        string
	Caption         string
	DeleteAfterSend bool
	Priority        uint8
}

func NewRabbitClient(url string, queueName string) *RabbitClient {
	log.Printf("[RABBIT] Creating new RabbitMQ client for queue: %s", queueName)

	client := &RabbitClient{
		url:       url,
		queueName: queueName,
	}

	client.mu.Lock()
	err := client.connect()
	client.mu.Unlock()
	if err != nil {
		log.Printf("[RABBIT] Initial connection failed: %v. Will retry...", err)
	}

	return client
}

// connect dials the broker and declares the queue. Caller holds mu.
func (c *RabbitClient) connect() error {
	log.Printf("[RABBIT] Connecting to RabbitMQ at %s", c.url)

	// Close existing connection if any
	if c.connection != nil && !c.connection.IsClosed() {
		c.connection.Close()
	}
	if c.channel != nil {
		c.channel.Close()
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	c.connection = conn

	ch, err := c.connection.Channel()
	if err != nil {
		c.connection.Close()
		return err
	}
	c.channel = ch

	// Declare queue with priority support
	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,      // durable
		false,     // auto-delete
		false,     // exclusive
		false,     // no-wait
		queueArgs, // arguments for priority queue
	)
	if err != nil {
		c.channel.Close()
		c.connection.Close()
		return err
	}

	log.Printf("[RABBIT] Connected and queue '%s' declared", c.queueName)
	return nil
}

// isConnectionOpen reports channel liveness. Caller holds mu.
func (c *RabbitClient) isConnectionOpen() bool {
	if c.connection == nil || c.connection.IsClosed() {
		return false
	}
	if c.channel == nil {
		return false
	}

	// Cheap liveness probe: redeclaring the queue fails on a dead channel
	_, err := c.channel.QueueDeclarePassive(
		c.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		queueArgs,
	)
	return err == nil
}

// ensureConnection reconnects if needed. Caller holds mu.
func (c *RabbitClient) ensureConnection() error {
	if !c.isConnectionOpen() {
		log.Printf("[RABBIT] Connection is closed, attempting to reconnect...")
		return c.connect()
	}
	return nil
}

func (c *RabbitClient) dropConnection() {
	c.mu.Lock()
	c.channel = nil
	c.connection = nil
	c.mu.Unlock()
}

func (c *RabbitClient) publish(body []byte, priority uint8, headers amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnection(); err != nil {
		log.Printf("[RABBIT] Failed to establish connection: %v", err)
		metrics.RecordRabbitMQMessage("published", c.queueName, false)
		return err
	}

	err := c.channel.Publish(
		"",          // exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Priority:     priority,
			Headers:      headers,
		},
	)

	if err != nil {
		// Reset connection on publish error
		c.channel = nil
		c.connection = nil
		metrics.RecordRabbitMQMessage("published", c.queueName, false)
		return err
	}

	metrics.RecordRabbitMQMessage("published", c.queueName, true)
	return nil
}

func (c *RabbitClient) PublishTgMessage(messageBag MessageBag) error {
	log.Printf("[RABBIT] Publishing message to user %d with priority %d",
		messageBag.Message.ChatID, messageBag.Priority)

	body, err := json.Marshal(messageBag)
	if err != nil {
		log.Printf("[RABBIT] Failed to marshal message: %v", err)
		return err
	}

	if err := c.publish(body, messageBag.Priority, nil); err != nil {
		log.Printf("[RABBIT] Failed to publish message: %v", err)
		return err
	}

	log.Printf("[RABBIT] Message published successfully")
	return nil
}

// PublishCallbackAnswer publishes a callback query answer
func (c *RabbitClient) PublishCallbackAnswer(callbackBag CallbackAnswerBag) error {
	log.Printf("[RABBIT] Publishing callback answer %s with priority %d",
		callbackBag.CallbackAnswer.CallbackQueryID, callbackBag.Priority)

	body, err := json.Marshal(callbackBag)
	if err != nil {
		log.Printf("[RABBIT] Failed to marshal callback answer: %v", err)
		return err
	}

	headers := amqp.Table{"message_type": "callback_answer"}
	if err := c.publish(body, callbackBag.Priority, headers); err != nil {
		log.Printf("[RABBIT] Failed to publish callback answer: %v", err)
		return err
	}

	log.Printf("[RABBIT] Callback answer published successfully")
	return nil
}

// PublishEditMessage publishes a message edit operation
func (c *RabbitClient) PublishEditMessage(editBag EditMessageBag) error {
	log.Printf("[RABBIT] Publishing message edit for message %d in chat %d with priority %d",
		editBag.EditMessage.MessageID, editBag.EditMessage.ChatID, editBag.Priority)

	body, err := json.Marshal(editBag)
	if err != nil {
		log.Printf("[RABBIT] Failed to marshal edit message: %v", err)
		return err
	}

	headers := amqp.Table{"message_type": "edit_message"}
	if err := c.publish(body, editBag.Priority, headers); err != nil {
		log.Printf("[RABBIT] Failed to publish edit message: %v", err)
		return err
	}

	log.Printf("[RABBIT] Edit message published successfully")
	return nil
}

// PublishDocument publishes a document upload request
func (c *RabbitClient) PublishDocument(documentBag DocumentBag) error {
	log.Printf("[RABBIT] Publishing document %s for chat %d with priority %d",
		documentBag.FilePath, documentBag.ChatID, documentBag.Priority)

	body, err := json.Marshal(documentBag)
	if err != nil {
		log.Printf("[RABBIT] Failed to marshal document bag: %v", err)
		return err
	}

	headers := amqp.Table{"message_type": "document"}
	if err := c.publish(body, documentBag.Priority, headers); err != nil {
		log.Printf("[RABBIT] Failed to publish document bag: %v", err)
		return err
	}

	log.Printf("[RABBIT] Document bag published successfully")
	return nil
}

func (c *RabbitClient) RegisterHandler(handler Handler) {
	log.Printf("[RABBIT] Registering message handler for queue: %s", c.queueName)

	// Rate limiter - 30 messages per second, the Telegram bot-wide limit
	rl := ratelimit.New(30)

	go func() {
		for {
			// Ensure we have a valid connection and subscribe while
			// still holding the lock, a concurrent publisher could
			// reset the channel in between otherwise
			c.mu.Lock()
			var msgs <-chan amqp.Delivery
			err := c.ensureConnection()
			if err == nil {
				msgs, err = c.channel.Consume(
					c.queueName,
					"",    // consumer tag
					false, // auto-ack
					false, // exclusive
					false, // no-local
					false, // no-wait
					nil,   // args
				)
			}
			c.mu.Unlock()

			if err != nil {
				log.Printf("[RABBIT] Failed to register consumer: %v. Retrying in 5 seconds...", err)
				c.dropConnection()
				time.Sleep(5 * time.Second)
				continue
			}

			log.Printf("[RABBIT] Consumer registered, waiting for messages...")

			for msg := range msgs {
				rl.Take() // Rate limiting

				log.Printf("[RABBIT] Processing message")
				handler(msg.Body, msg.Headers)

				if err := msg.Ack(false); err != nil {
					log.Printf("[RABBIT] Failed to acknowledge message: %v", err)
					metrics.RecordRabbitMQMessage("consumed", c.queueName, false)
				} else {
					metrics.RecordRabbitMQMessage("consumed", c.queueName, true)
				}
			}

			log.Printf("[RABBIT] Consumer channel closed, reconnecting...")
			c.dropConnection()
		}
	}()
}

func (c *RabbitClient) Close() {
	log.Printf("[RABBIT] Closing RabbitMQ connection")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.connection != nil {
		c.connection.Close()
	}
}
