// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (service, репозиторий, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - workflow_handler.go — обработчики для /workflows
//   - run_handler.go      — обработчики для /runs
//
// API предоставляет REST endpoints для просмотра workflows, запуска
// runs и чтения их результатов.
package api
