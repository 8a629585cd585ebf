package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Gantry/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunCompleted MessageType = "run.completed"
	MessageTypeJobCompleted MessageType = "job.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunCompletedPayload — payload для сообщения о завершённом run.
type RunCompletedPayload struct {
	RunID     uuid.UUID `json:"run_id"`
	Workflow  string    `json:"workflow"`
	Status    string    `json:"status"`
	AllPassed bool      `json:"all_passed"`
	Reason    string    `json:"reason,omitempty"`
	JobCount  int       `json:"job_count"`
}

// JobCompletedPayload — payload для сообщения о завершённом job.
type JobCompletedPayload struct {
	RunID      uuid.UUID `json:"run_id"`
	JobKey     string    `json:"job_key"`
	Status     string    `json:"status"`
	FailedStep string    `json:"failed_step,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// publish сериализует и отправляет сообщение в exchange.
// Persistent delivery: сообщение переживёт рестарт брокера.
func (p *Publisher) publish(ctx context.Context, exchange string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx, exchange, RoutingKeyCompleted, false, false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s: %w", exchange, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishRunCompleted публикует событие о завершённом run.
func (p *Publisher) PublishRunCompleted(ctx context.Context, outcome *domain.RunOutcome) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeRunCompleted,
		Payload: RunCompletedPayload{
			RunID:     outcome.RunID,
			Workflow:  outcome.Workflow,
			Status:    string(outcome.Status()),
			AllPassed: outcome.AllPassed,
			Reason:    outcome.Reason,
			JobCount:  len(outcome.Jobs),
		},
		Timestamp: time.Now(),
	}

	return p.publish(ctx, ExchangeRuns, msg)
}

// PublishJobCompleted публикует событие о job, достигшем терминального
// статуса.
func (p *Publisher) PublishJobCompleted(ctx context.Context, runID uuid.UUID, result *domain.JobResult) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeJobCompleted,
		Payload: JobCompletedPayload{
			RunID:      runID,
			JobKey:     result.JobKey,
			Status:     string(result.Status),
			FailedStep: result.FailedStep,
			Error:      result.Error,
			DurationMs: result.Duration.Milliseconds(),
		},
		Timestamp: time.Now(),
	}

	return p.publish(ctx, ExchangeJobs, msg)
}
