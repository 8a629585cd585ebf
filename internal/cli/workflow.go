package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Gantry/internal/engine"
	"github.com/shaiso/Gantry/internal/report"
)

// NewValidateCmd создаёт команду проверки декларации.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate WORKFLOW_FILE",
		Short: "Validate a workflow declaration without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			wf, err := engine.Load(args[0])
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitConfigError)
			}

			out.Success(fmt.Sprintf("Workflow %q is valid: %d axes, %d jobs, %d steps",
				wf.Name,
				len(wf.Matrix.Dimensions),
				wf.Matrix.Size(),
				len(wf.Steps),
			))
			return nil
		},
	}
}

// NewExpandCmd создаёт команду предпросмотра матрицы.
func NewExpandCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "expand WORKFLOW_FILE",
		Short: "Show the jobs a workflow matrix expands into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			wf, err := engine.Load(args[0])
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitConfigError)
			}

			specs, err := engine.Expand(&wf.Matrix, wf.Steps)
			if err != nil {
				out.Error(err.Error())
				return exitWith(report.ExitConfigError)
			}

			headers := []string{"INDEX", "JOB"}
			rows := make([][]string, len(specs))
			for i, spec := range specs {
				rows[i] = []string{strconv.Itoa(spec.Index), spec.Key}
			}

			out.Print(headers, rows, specs)
			return nil
		},
	}
}
