// Package engine разворачивает объявленную build-матрицу в jobs.
//
// Engine отвечает за:
//   - Загрузку workflow-декларации из YAML
//   - Валидацию матрицы и шагов (ConfigError до старта любых jobs)
//   - Декартово произведение осей → упорядоченный список JobSpec
//
// Разворачивание детерминировано: одинаковая декларация всегда даёт
// одинаково упорядоченный список jobs с одинаковыми ключами. На этом
// держится стабильная идентичность job для логов и отчётов.
package engine
