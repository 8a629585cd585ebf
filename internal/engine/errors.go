package engine

import "errors"

// Ошибки валидации workflow-декларации.
var (
	// ErrNoAxes — матрица не содержит ни одной оси.
	ErrNoAxes = errors.New("matrix has no axes")

	// ErrEmptyAxisName — ось без имени.
	ErrEmptyAxisName = errors.New("axis has empty name")

	// ErrEmptyAxis — ось без значений.
	ErrEmptyAxis = errors.New("axis has no values")

	// ErrDuplicateAxis — несколько осей с одинаковым именем.
	ErrDuplicateAxis = errors.New("duplicate axis name")

	// ErrDuplicateValue — повторяющееся значение внутри одной оси.
	ErrDuplicateValue = errors.New("duplicate value in axis")

	// ErrNoSteps — workflow не содержит шагов.
	ErrNoSteps = errors.New("workflow has no steps")

	// ErrUnknownStepKind — неизвестный тип шага.
	ErrUnknownStepKind = errors.New("unknown step kind")

	// ErrDuplicateStepKind — тип шага объявлен более одного раза.
	ErrDuplicateStepKind = errors.New("duplicate step kind")

	// ErrNoTriggers — workflow не объявляет ни одного триггера.
	ErrNoTriggers = errors.New("workflow has no triggers")

	// ErrEmptyCron — schedule-триггер без cron-выражения.
	ErrEmptyCron = errors.New("schedule trigger has empty cron expression")

	// ErrInvalidCron — cron-выражение не распарсилось.
	ErrInvalidCron = errors.New("invalid cron expression")

	// ErrNegativeParallelism — отрицательный max_parallel.
	ErrNegativeParallelism = errors.New("max_parallel is negative")

	// ErrInvalidDeclaration — workflow-файл не распарсился.
	ErrInvalidDeclaration = errors.New("invalid workflow declaration")
)

// ConfigError — ошибка декларации с контекстом.
//
// Фатальна: run прерывается до того, как запланирован хотя бы один job.
type ConfigError struct {
	Field   string // поле декларации, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая sentinel-ошибка
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError создаёт новую ошибку декларации.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
