// Package orchestrator управляет выполнением runs.
//
// Orchestrator — единственный планирующий орган run:
//   - Запускает jobs с ограничением параллелизма (max_parallel)
//   - По освобождению слота стартует следующий pending job в порядке
//     разворачивания матрицы
//   - При fail-fast отменяет выполняющиеся jobs и помечает pending
//     как CANCELLED после первого FAILED/ERRORED
//   - Собирает терминальные результаты и отдаёт их агрегатору
//
// Планирующий цикл однопоточный: jobs сообщают о завершении через
// ограниченный канал, общего изменяемого состояния между планировщиком
// и выполняющимися jobs нет.
package orchestrator
