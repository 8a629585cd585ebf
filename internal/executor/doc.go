// Package executor выполняет один job через его последовательность шагов.
//
// Executor прогоняет шаги строго по порядку (provision →
// install-dependencies → run-tests) через внешних коллабораторов
// Environment, DependencyInstaller и TestRunner, классифицирует исход
// (SUCCEEDED/FAILED/ERRORED/CANCELLED) и отдаёт неизменяемый JobResult.
//
// Гарантии:
//   - Каждый шаг ограничен своим таймаутом; превышение — ERRORED
//   - Отмена наблюдается кооперативно между шагами — CANCELLED
//   - Захваченное окружение освобождается ровно один раз на любом
//     пути выхода, включая отмену и таймаут
//   - Ошибки шага не выходят за пределы своего job
package executor
