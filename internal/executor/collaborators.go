package executor

import (
	"context"

	"github.com/shaiso/Gantry/internal/domain"
)

// EnvContext — захваченное изолированное окружение одного job.
//
// Создаётся Environment.Acquire и передаётся остальным коллабораторам.
// Для executor'а непрозрачен, кроме идентификатора и рабочего каталога.
type EnvContext struct {
	// ID — идентификатор окружения (для логов).
	ID string

	// WorkDir — рабочий каталог окружения, если применимо.
	WorkDir string

	// Axes — значения осей, под которые окружение материализовано.
	Axes []domain.AxisValue
}

// Environment — внешний провайдер исполняемых окружений.
//
// Реализация обязана:
//   - Быть идемпотентной при повторном Release
//   - Безопасно принимать Release частично захваченного окружения
type Environment interface {
	// Acquire материализует окружение под комбинацию значений осей.
	Acquire(ctx context.Context, axes []domain.AxisValue) (*EnvContext, error)

	// Release освобождает окружение.
	Release(env *EnvContext) error
}

// DependencyInstaller — внешний установщик зависимостей.
type DependencyInstaller interface {
	// Install устанавливает объявленные пакеты в окружение.
	Install(ctx context.Context, env *EnvContext, packages []string) error
}

// TestReport — результат выполнившегося тестового набора.
//
// Отличает "тесты выполнились, часть упала" (Failed > 0) от
// "запуск не состоялся" — последнее TestRunner возвращает ошибкой.
type TestReport struct {
	// Passed — количество прошедших тестов.
	Passed int

	// Failed — количество упавших тестов.
	Failed int
}

// AllPassed возвращает true, если упавших тестов нет.
func (r *TestReport) AllPassed() bool {
	return r.Failed == 0
}

// TestRunner — внешний исполнитель тестового набора.
type TestRunner interface {
	// Run выполняет тесты внутри окружения.
	//
	// Ошибка означает, что тесты не смогли выполниться (падение
	// runner'а, таймаут); упавшие тесты — не ошибка, а Failed > 0
	// в отчёте.
	Run(ctx context.Context, env *EnvContext) (*TestReport, error)
}
