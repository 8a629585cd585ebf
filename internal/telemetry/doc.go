// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики jobs и runs
//
// Все бинарники используют единый формат логирования; gantry-server
// экспортирует метрики на /metrics endpoint.
package telemetry
