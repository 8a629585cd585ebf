package localenv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/shaiso/Gantry/internal/executor"
)

// TestRunner — исполнитель тестов внешней командой.
//
// Exit-код трактуется по контракту pytest:
//   - 0 — тесты выполнились, все прошли
//   - 1 — тесты выполнились, есть упавшие (результат, не ошибка)
//   - остальные — сам runner не смог выполнить тесты (ошибка)
type TestRunner struct {
	command []string
}

// NewTestRunner создаёт исполнитель тестов.
// Пустая команда — pytest по умолчанию.
func NewTestRunner(command []string) *TestRunner {
	if len(command) == 0 {
		command = []string{"pytest"}
	}
	return &TestRunner{command: command}
}

// summaryRe вытаскивает счётчики из итоговой строки pytest:
// "=== 3 failed, 17 passed in 1.24s ===".
var summaryRe = regexp.MustCompile(`(\d+) (passed|failed)`)

// Run выполняет тесты в рабочем каталоге окружения.
func (r *TestRunner) Run(ctx context.Context, env *executor.EnvContext) (*executor.TestReport, error) {
	if env == nil {
		return nil, fmt.Errorf("no environment acquired")
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = env.WorkDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		report := parseSummary(out.Bytes())
		report.Failed = 0
		return report, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// Тесты выполнились, часть упала.
		report := parseSummary(out.Bytes())
		if report.Failed == 0 {
			report.Failed = 1
		}
		return report, nil
	}

	return nil, fmt.Errorf("test command: %w: %s", err, tail(out.Bytes()))
}

// parseSummary разбирает счётчики passed/failed из вывода.
// Нераспознанный вывод даёт нулевые счётчики.
func parseSummary(out []byte) *executor.TestReport {
	report := &executor.TestReport{}

	for _, m := range summaryRe.FindAllSubmatch(out, -1) {
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		switch string(m[2]) {
		case "passed":
			report.Passed = n
		case "failed":
			report.Failed = n
		}
	}

	return report
}
