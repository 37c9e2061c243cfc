package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devinfinitee/AI-health-companion/pkg/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url, name string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func toMessage(msg *nats.Msg) *Message {
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
	}
}

// NopBus drops everything. It stands in when NATS_URL is not configured.
type NopBus struct{}

func (NopBus) Publish(context.Context, string, interface{}) error  { return nil }
func (NopBus) QueueSubscribe(string, string, func(*Message)) error { return nil }
func (NopBus) Close() error                                        { return nil }

const (
	AppointmentCreated   = "appointment.created"
	AppointmentUpdated   = "appointment.updated"
	AppointmentCancelled = "appointment.cancelled"
)

type AppointmentCreatedEvent struct {
	AppointmentID    string    `json:"appointment_id"`
	UserID           string    `json:"user_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	PatientName      string    `json:"patient_name"`
	PatientEmail     string    `json:"patient_email"`
	PatientPhone     string    `json:"patient_phone"`
	AppointmentDate  time.Time `json:"appointment_date"`
	AppointmentTime  string    `json:"appointment_time"`
	Department       string    `json:"department"`
	CreatedAt        time.Time `json:"created_at"`
}

type AppointmentUpdatedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	Changes       []string  `json:"changes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AppointmentCancelledEvent struct {
	AppointmentID    string    `json:"appointment_id"`
	UserID           string    `json:"user_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	PreviousStatus   string    `json:"previous_status"`
	CancelledAt      time.Time `json:"cancelled_at"`
}
