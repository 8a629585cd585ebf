// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий жизненного цикла runs и jobs
//
// Типы сообщений:
//   - run.completed  — run завершён, outcome доступен
//   - job.completed  — job достиг терминального статуса
//
// Exchanges:
//   - gantry.runs  — события runs
//   - gantry.jobs  — события jobs
//
// Публикация — best-effort уведомление внешних потребителей
// (webhooks, дашборды): сам run от состояния очереди не зависит.
package mq
