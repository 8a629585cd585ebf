// Package localenv — локальные реализации коллабораторов executor'а.
//
// Для запуска через CLI без внешней инфраструктуры:
//   - Environment — изолированный рабочий каталог на job
//   - DependencyInstaller — установка пакетов внешней командой
//   - TestRunner — запуск тестов внешней командой с трактовкой
//     exit-кода в стиле pytest
//
// В production-окружении вместо этого пакета подключаются провайдеры
// контейнеров/VM; интерфейсы executor'а одинаковы для обоих случаев.
package localenv
