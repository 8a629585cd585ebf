package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Gantry/internal/domain"
	"github.com/shaiso/Gantry/internal/engine"
	"github.com/shaiso/Gantry/internal/executor"
	"github.com/shaiso/Gantry/internal/localenv"
	"github.com/shaiso/Gantry/internal/orchestrator"
	"github.com/shaiso/Gantry/internal/report"
)

// NewRunCmd создаёт команду локального выполнения workflow.
func NewRunCmd(outputFn func() *Output) *cobra.Command {
	var (
		failFast    bool
		maxParallel int
		logDir      string
		envDir      string
		reportPath  string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run WORKFLOW_FILE",
		Short: "Run a workflow locally",
		Long: `Run разворачивает матрицу workflow в jobs и выполняет их в локальных
окружениях. Exit-код отражает итог: 0 — все jobs успешны, 1 — тесты
упали, 2 — инфраструктурная ошибка, 3 — невалидная декларация,
4 — run отменён.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			logger := newRunLogger(verbose)

			wf, err := engine.Load(args[0])
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitConfigError)
			}

			// Флаги перекрывают политику из декларации.
			if cmd.Flags().Changed("fail-fast") {
				wf.Policy.FailFast = failFast
			}
			if cmd.Flags().Changed("max-parallel") {
				wf.Policy.MaxParallel = maxParallel
			}

			specs, err := engine.Expand(&wf.Matrix, wf.Steps)
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitConfigError)
			}

			env, err := localenv.NewEnvironment(envDir)
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitInfraError)
			}

			exec := executor.New(executor.Config{
				Environment: env,
				Installer:   localenv.NewInstaller(nil),
				Runner:      localenv.NewTestRunner(nil),
				LogDir:      logDir,
				Logger:      logger,
			})

			orch := orchestrator.New(orchestrator.Config{
				Runner: exec,
				Logger: logger,
			})

			runID := uuid.New()
			out.Success(fmt.Sprintf("Running %q: %d jobs (max_parallel=%d, fail_fast=%v)",
				wf.Name, len(specs), wf.Policy.MaxParallel, wf.Policy.FailFast))

			outcome, err := orch.Run(cmd.Context(), runID, wf.Name, specs, wf.Policy)
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitInfraError)
			}

			printOutcome(out, outcome)

			if reportPath != "" {
				if err := report.WriteFile(reportPath, outcome); err != nil {
					out.Error(err.Error())
					return exitWith(report.ExitInfraError)
				}
				out.Success("Report written to " + reportPath)
			}

			if code := report.ExitCode(outcome); code != report.ExitOK {
				return exitWith(code)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Cancel remaining jobs after the first failure")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", 0, "Maximum number of jobs running at once (0 = unlimited)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for per-job log files")
	cmd.Flags().StringVar(&envDir, "env-dir", "", "Base directory for job environments (default: temp dir)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write machine-readable JSON report to file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose execution logging")

	return cmd
}

// NewReportCmd создаёт команду чтения сохранённого отчёта.
func NewReportCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "report REPORT_FILE",
		Short: "Print a saved run report and exit with its outcome code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := os.ReadFile(args[0])
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitInfraError)
			}

			var doc report.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				out.Error("invalid report file: " + err.Error())
				return exitWith(report.ExitInfraError)
			}

			printDocument(out, &doc)

			if code := documentExitCode(&doc); code != report.ExitOK {
				return exitWith(code)
			}
			return nil
		},
	}
}

// printOutcome печатает итоговую таблицу run.
func printOutcome(out *Output, outcome *domain.RunOutcome) {
	headers := []string{"JOB", "STATUS", "DURATION", "FAILED_STEP", "ERROR"}
	rows := make([][]string, len(outcome.Jobs))
	for i := range outcome.Jobs {
		job := &outcome.Jobs[i]
		rows[i] = []string{
			job.JobKey,
			string(job.Status),
			job.Duration.Round(time.Millisecond).String(),
			job.FailedStep,
			job.Error,
		}
	}

	out.Print(headers, rows, report.Build(outcome))

	verdict := "FAILED"
	if outcome.AllPassed {
		verdict = "PASSED"
	}
	msg := fmt.Sprintf("Run %s: %s", outcome.RunID, verdict)
	if outcome.Reason != "" {
		msg += " (" + outcome.Reason + ")"
	}
	out.Success(msg)
}

// printDocument печатает таблицу из сохранённого отчёта.
func printDocument(out *Output, doc *report.Document) {
	headers := []string{"JOB", "STATUS", "DURATION_MS", "FAILED_STEP", "ERROR"}
	rows := make([][]string, len(doc.Jobs))
	for i, job := range doc.Jobs {
		rows[i] = []string{
			job.Job,
			string(job.Status),
			fmt.Sprintf("%d", job.DurationMs),
			job.FailedStep,
			job.Error,
		}
	}

	out.Print(headers, rows, doc)
}

// documentExitCode вычисляет exit-код по сохранённому отчёту
// (та же свёртка, что report.ExitCode по живому outcome).
func documentExitCode(doc *report.Document) int {
	if doc.AllPassed {
		return report.ExitOK
	}

	var failed, errored int
	for _, job := range doc.Jobs {
		switch job.Status {
		case domain.JobStatusFailed:
			failed++
		case domain.JobStatusErrored:
			errored++
		}
	}

	switch {
	case errored > 0:
		return report.ExitInfraError
	case failed > 0:
		return report.ExitTestsFailed
	default:
		return report.ExitCancelled
	}
}

// newRunLogger создаёт логгер выполнения: тихий по умолчанию,
// подробный с --verbose.
func newRunLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
