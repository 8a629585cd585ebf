// Package report сворачивает результаты jobs в итог run.
//
// Aggregate — чистая свёртка: список терминальных JobResult →
// RunOutcome с вердиктом all_passed и результатами в порядке
// разворачивания матрицы. Порядок завершения, зависящий от
// конкурентности, в отчёт не протекает.
//
// Здесь же — сериализация отчёта для машинного потребления и
// вычисление exit-кода процесса по классу неуспеха.
package report
