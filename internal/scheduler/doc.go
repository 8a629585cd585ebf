// Package scheduler реализует запуск workflows по расписанию.
//
// Scheduler держит в памяти следующее время срабатывания для каждого
// workflow с триггером schedule и на каждом тике отправляет due
// workflows в выполнение.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Tick, processDue)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Workflows: workflows,
//	    Submitter: service,
//	    Logger:    logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	sched.Tick(ctx, time.Now())
package scheduler
