package engine

import (
	"fmt"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/scheduler"
)

// Validate выполняет полную валидацию workflow-декларации.
//
// Проверяет:
// - Наличие хотя бы одного триггера; у schedule-триггера cron-выражение
//   непустое и парсится
// - Непустую матрицу: каждая ось имеет имя и хотя бы одно значение,
//   имена осей уникальны, значения внутри оси не повторяются
// - Шаги: непустой список, известные типы, без дублей типов
// - Политику: неотрицательный max_parallel
//
// Любое нарушение — *ConfigError, оборачивающий sentinel из errors.go.
// Валидация выполняется до планирования jobs; невалидная декларация
// не порождает ни одного job.
func Validate(wf *domain.Workflow) error {
	if wf == nil {
		return NewConfigError("", "workflow is nil", ErrNoSteps)
	}

	if err := validateTriggers(&wf.Triggers); err != nil {
		return err
	}

	if err := ValidateMatrix(&wf.Matrix); err != nil {
		return err
	}

	if err := validateSteps(wf.Steps); err != nil {
		return err
	}

	if wf.Policy.MaxParallel < 0 {
		return NewConfigError("policy.max_parallel",
			fmt.Sprintf("max_parallel is negative: %d", wf.Policy.MaxParallel),
			ErrNegativeParallelism)
	}

	return nil
}

// ValidateMatrix валидирует только матрицу.
func ValidateMatrix(m *domain.Matrix) error {
	if m == nil || len(m.Dimensions) == 0 {
		return NewConfigError("matrix", "matrix has no axes", ErrNoAxes)
	}

	seen := make(map[string]bool, len(m.Dimensions))

	for _, dim := range m.Dimensions {
		if dim.Name == "" {
			return NewConfigError("matrix", "axis has empty name", ErrEmptyAxisName)
		}

		if seen[dim.Name] {
			return NewConfigError("matrix."+dim.Name,
				fmt.Sprintf("duplicate axis name: %s", dim.Name), ErrDuplicateAxis)
		}
		seen[dim.Name] = true

		if len(dim.Values) == 0 {
			return NewConfigError("matrix."+dim.Name,
				fmt.Sprintf("axis %s has no values", dim.Name), ErrEmptyAxis)
		}

		values := make(map[string]bool, len(dim.Values))
		for _, v := range dim.Values {
			if values[v] {
				return NewConfigError("matrix."+dim.Name,
					fmt.Sprintf("duplicate value %q in axis %s", v, dim.Name), ErrDuplicateValue)
			}
			values[v] = true
		}
	}

	return nil
}

// validateTriggers проверяет, что объявлен хотя бы один триггер.
func validateTriggers(t *domain.Triggers) error {
	if t.PullRequest == nil && t.Schedule == nil && !t.Dispatch {
		return NewConfigError("on", "workflow has no triggers", ErrNoTriggers)
	}

	if t.Schedule != nil {
		if t.Schedule.Cron == "" {
			return NewConfigError("on.schedule", "schedule trigger has empty cron expression", ErrEmptyCron)
		}
		if err := scheduler.ValidateCronExpr(t.Schedule.Cron); err != nil {
			return NewConfigError("on.schedule",
				fmt.Sprintf("cron expression %q does not parse", t.Schedule.Cron), ErrInvalidCron)
		}
	}

	return nil
}

// validateSteps проверяет список шагов.
// Типы шагов образуют закрытый набор; каждый тип встречается не более
// одного раза, порядок объявления — порядок выполнения.
func validateSteps(steps []domain.StepDef) error {
	if len(steps) == 0 {
		return NewConfigError("steps", "workflow has no steps", ErrNoSteps)
	}

	seen := make(map[domain.StepKind]bool, len(steps))

	for i, step := range steps {
		field := fmt.Sprintf("steps[%d]", i)

		if !step.Kind.IsValid() {
			return NewConfigError(field,
				fmt.Sprintf("unknown step kind: %q", step.Kind), ErrUnknownStepKind)
		}

		if seen[step.Kind] {
			return NewConfigError(field,
				fmt.Sprintf("step kind %s declared twice", step.Kind), ErrDuplicateStepKind)
		}
		seen[step.Kind] = true
	}

	return nil
}
