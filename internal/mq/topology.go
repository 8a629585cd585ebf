package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Имена обменников.
const (
	ExchangeRuns = "gantry.runs"
	ExchangeJobs = "gantry.jobs"
)

// Имена очередей.
const (
	QueueRunsCompleted = "runs.completed"
	QueueJobsCompleted = "jobs.completed"
)

// RoutingKeyCompleted — единственный ключ маршрутизации: оба обменника
// несут только события завершения.
const RoutingKeyCompleted = "completed"

// binding — одна связка обменник → очередь.
type binding struct {
	exchange string
	queue    string
	key      string
}

// topology — полная топология Gantry. Очереди без DLQ: события
// публикуются ровно один раз, retry — забота подписчика.
var topology = []binding{
	{ExchangeRuns, QueueRunsCompleted, RoutingKeyCompleted},
	{ExchangeJobs, QueueJobsCompleted, RoutingKeyCompleted},
}

// SetupTopology декларирует обменники, очереди и связки.
// Идемпотентна: повторный вызов на существующей топологии безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, b := range topology {
			err := ch.ExchangeDeclare(
				b.exchange,
				"direct",
				true,  // durable
				false, // auto-deleted
				false, // internal
				false, // no-wait
				nil,
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", b.exchange, err)
			}

			_, err = ch.QueueDeclare(
				b.queue,
				true,  // durable
				false, // delete when unused
				false, // exclusive
				false, // no-wait
				nil,
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}
