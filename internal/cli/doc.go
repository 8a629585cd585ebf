// Package cli реализует инструмент командной строки Gantry.
//
// # Обзор
//
// CLI выполняет workflows локально, без сервера: декларация читается
// из YAML-файла, матрица разворачивается в jobs, jobs выполняются
// в локальных окружениях (localenv), результат печатается отчётом.
// Это основной режим для отладки деклараций и запуска CI на машине
// разработчика.
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: gantry expand ci.yaml --json | jq .
//
// ## Commands
//
//   - run:      выполнить workflow и выйти с кодом итога
//   - validate: проверить декларацию без выполнения
//   - expand:   показать jobs, в которые развернётся матрица
//   - report:   прочитать сохранённый отчёт и выйти с его кодом
//
// Каждая команда создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую outputFn — замыкание для ленивого создания Output после
// парсинга PersistentFlags.
//
// # Exit-коды
//
// Команды, завершающиеся неуспехом run, возвращают ExitError с кодом
// из пакета report (1 — тесты, 2 — инфраструктура, 3 — конфигурация,
// 4 — отмена). main транслирует его в os.Exit.
package cli
