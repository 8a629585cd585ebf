package domain

// Workflow — декларация CI-процесса: триггеры, матрица, шаги, политика.
//
// Workflow — это "рецепт": один и тот же workflow порождает независимые
// runs на каждое событие-триггер. Сам workflow неизменяем в рамках run.
type Workflow struct {
	// Name — имя workflow (например, "ci").
	Name string `json:"name"`

	// Triggers — события, запускающие workflow.
	Triggers Triggers `json:"on"`

	// Matrix — объявленная build-матрица.
	Matrix Matrix `json:"matrix"`

	// Steps — последовательность шагов каждого job.
	Steps []StepDef `json:"steps"`

	// Policy — политика параллелизма и fail-fast.
	Policy Policy `json:"policy"`
}

// Triggers — объявленные триггеры workflow.
type Triggers struct {
	// PullRequest — запуск на pull request в перечисленные ветки.
	PullRequest *PullRequestTrigger `json:"pull_request,omitempty"`

	// Schedule — запуск по расписанию (cron).
	Schedule *ScheduleTrigger `json:"schedule,omitempty"`

	// Dispatch — разрешён ли ручной запуск.
	Dispatch bool `json:"dispatch,omitempty"`
}

// PullRequestTrigger — параметры триггера pull_request.
type PullRequestTrigger struct {
	// Branches — целевые ветки. Пустой список — любая ветка.
	Branches []string `json:"branches,omitempty"`
}

// Matches проверяет, подходит ли целевая ветка под триггер.
func (t *PullRequestTrigger) Matches(branch string) bool {
	if len(t.Branches) == 0 {
		return true
	}
	for _, b := range t.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// ScheduleTrigger — параметры триггера schedule.
type ScheduleTrigger struct {
	// Cron — cron-выражение (5 полей: минута час день месяц день-недели).
	Cron string `json:"cron"`

	// Timezone — IANA timezone для вычисления расписания. Пустая — UTC.
	Timezone string `json:"timezone,omitempty"`
}

// Policy — политика оркестрации run.
type Policy struct {
	// MaxParallel — верхняя граница одновременно выполняющихся jobs.
	// 0 — без ограничения (все jobs стартуют сразу).
	MaxParallel int `json:"max_parallel,omitempty"`

	// FailFast — отменять ли остальные jobs при первом FAILED/ERRORED.
	//
	// По умолчанию false: независимые ячейки матрицы несут независимую
	// диагностическую ценность, падение одной комбинации не должно
	// скрывать результаты остальных.
	FailFast bool `json:"fail_fast,omitempty"`
}
