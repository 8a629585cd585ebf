// Gantry CLI — запуск CI workflows на локальной машине.
//
// Использование:
//
//	gantry [--json] <command> [flags]
//
// Команды:
//
//	run       Выполнить workflow и выйти с кодом итога
//	validate  Проверить декларацию без выполнения
//	expand    Показать jobs, в которые развернётся матрица
//	report    Прочитать сохранённый отчёт
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Gantry/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "gantry",
		Short:         "Gantry CLI — matrix CI runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(outputFn),
		cli.NewValidateCmd(outputFn),
		cli.NewExpandCmd(outputFn),
		cli.NewReportCmd(outputFn),
	)

	// Ctrl-C отменяет выполняющийся run; jobs доводятся до CANCELLED.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
