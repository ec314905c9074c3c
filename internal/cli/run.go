package cli

import (
	"fmt"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/metrics"
	"github.com/chararch/gobatch-sample/sample"
	"github.com/chararch/gobatch-sample/status"
	"github.com/chararch/gobatch-sample/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sample job once and wait for it",
		Example: `  gobatch-sample run
  gobatch-sample run --param fail=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobParams, err := util.ParseKeyValues(params)
			if err != nil {
				return err
			}
			paramsJSON, err := util.JsonString(jobParams)
			if err != nil {
				return err
			}
			if err := a.setup(); err != nil {
				return err
			}
			defer a.teardown()

			job := sample.NewJob(sample.WithListener(metrics.NewListener()))
			if err := gobatch.Register(job); err != nil {
				return err
			}
			defer gobatch.Unregister(job)

			id, err := gobatch.Start(cmd.Context(), job.Name(), paramsJSON)
			if err != nil {
				return err
			}
			execution := gobatch.GetJobExecution(id)
			if execution == nil {
				return errors.Errorf("job execution %v not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "jobExecutionId: %s\nstatus: %s\n", id, execution.JobStatus)
			if execution.JobStatus != status.COMPLETED {
				return errors.Errorf("job %v finished with status %v: %v", job.Name(), execution.JobStatus, execution.FailMessage())
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "job parameter as key=value, repeatable")
	return cmd
}
