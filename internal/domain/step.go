package domain

import "time"

// StepKind — тип шага внутри job.
//
// Набор закрытый: неизвестные типы отклоняются на этапе валидации
// workflow-файла, а не во время выполнения.
type StepKind string

const (
	// StepKindProvision — материализация изолированного окружения
	// под конкретную комбинацию значений осей (ОС, версия рантайма).
	StepKindProvision StepKind = "provision"

	// StepKindInstall — установка объявленных пакетов в окружение.
	StepKindInstall StepKind = "install-dependencies"

	// StepKindRunTests — запуск тестового набора внутри окружения.
	StepKindRunTests StepKind = "run-tests"
)

// IsValid проверяет, что тип шага входит в закрытый набор.
func (k StepKind) IsValid() bool {
	switch k {
	case StepKindProvision, StepKindInstall, StepKindRunTests:
		return true
	default:
		return false
	}
}

// DefaultStepTimeout — таймаут шага, если в декларации не задан свой.
const DefaultStepTimeout = 30 * time.Minute

// StepDef — объявление одного шага job.
//
// Шаги внутри job выполняются строго последовательно; ошибка шага
// прерывает оставшиеся шаги только этого job.
type StepDef struct {
	// Name — имя шага для логов и отчётов. Если пустое, используется Kind.
	Name string `json:"name,omitempty"`

	// Kind — тип шага.
	Kind StepKind `json:"kind"`

	// Packages — пакеты для install-dependencies.
	Packages []string `json:"packages,omitempty"`

	// Command — команда для run-tests (например, "pytest").
	Command []string `json:"command,omitempty"`

	// TimeoutSec — таймаут шага в секундах. 0 — DefaultStepTimeout.
	// Превышение трактуется как инфраструктурная ошибка шага (ERRORED).
	TimeoutSec int `json:"timeout_sec,omitempty"`
}

// DisplayName возвращает имя шага для логов.
func (s *StepDef) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Kind)
}

// Timeout возвращает таймаут шага как time.Duration.
func (s *StepDef) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return DefaultStepTimeout
	}
	return time.Duration(s.TimeoutSec) * time.Second
}
