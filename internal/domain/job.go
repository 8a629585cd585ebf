package domain

import "time"

// JobSpec — одна конкретная комбинация значений осей плюс шаги.
//
// JobSpec создаётся экспандером матрицы и после этого неизменяем.
// Идентичность job — каноничный ключ Key (AxisKey по значениям осей):
// она стабильна между повторными запусками одной декларации и не
// зависит от вида триггера.
type JobSpec struct {
	// Key — каноничный ключ job: "os=linux/python-version=3.7".
	Key string `json:"key"`

	// Index — позиция job в порядке разворачивания матрицы.
	// Используется для детерминированного порядка в отчёте.
	Index int `json:"index"`

	// Axes — выбранные значения осей, по одной на ось, в порядке осей.
	Axes []AxisValue `json:"axes"`

	// Steps — шаги job в порядке выполнения.
	Steps []StepDef `json:"steps"`
}

// AxisValueOf возвращает значение оси по имени.
func (s *JobSpec) AxisValueOf(name string) (string, bool) {
	for _, a := range s.Axes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// JobResult — финальный снимок завершённого job.
//
// Создаётся один раз когда job достигает терминального статуса
// и после этого не мутируется; безопасен для read-only шаринга
// между потребителями (отчёт, вычисление exit-кода, персистенс).
type JobResult struct {
	// JobKey — ключ job (JobSpec.Key).
	JobKey string `json:"job_key"`

	// Index — позиция job в порядке разворачивания.
	Index int `json:"index"`

	// Axes — значения осей job (копия из JobSpec).
	Axes []AxisValue `json:"axes"`

	// Status — терминальный статус job.
	Status JobStatus `json:"status"`

	// FailedStep — имя шага, на котором job завершился неуспешно.
	// Пустое для SUCCEEDED и для CANCELLED до старта.
	FailedStep string `json:"failed_step,omitempty"`

	// Error — текст ошибки для FAILED/ERRORED/CANCELLED.
	Error string `json:"error,omitempty"`

	// LogRef — ссылка на захваченный лог job (путь к файлу или URI).
	LogRef string `json:"log_ref,omitempty"`

	// StartedAt — время старта job. Nil, если job не стартовал
	// (отменён ещё в PENDING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// Duration — длительность выполнения job.
	Duration time.Duration `json:"duration"`
}

// Passed возвращает true, если job завершился успешно.
func (r *JobResult) Passed() bool {
	return r.Status == JobStatusSucceeded
}
