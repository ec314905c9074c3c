package metrics

import (
	"context"
	"time"

	gobatch "github.com/chararch/gobatch-sample"
)

//Listener records job and step outcomes, register it on a job builder to cover the job and all its steps
type Listener struct{}

//NewListener job and step listener counting executions by status
func NewListener() *Listener {
	return &Listener{}
}

func (l *Listener) BeforeJob(ctx context.Context, execution *gobatch.JobExecution) gobatch.BatchError {
	return nil
}

func (l *Listener) AfterJob(ctx context.Context, execution *gobatch.JobExecution) gobatch.BatchError {
	incJobExecution(execution.JobName, string(execution.JobStatus))
	return nil
}

func (l *Listener) BeforeStep(ctx context.Context, execution *gobatch.StepExecution) gobatch.BatchError {
	return nil
}

// AfterStep never overrides the exit status
func (l *Listener) AfterStep(ctx context.Context, execution *gobatch.StepExecution) (*gobatch.ExitStatus, gobatch.BatchError) {
	incStepExecution(execution.StepName, string(execution.StepStatus))
	if !execution.StartTime.IsZero() {
		end := execution.EndTime
		if end.IsZero() {
			end = time.Now()
		}
		observeStepDuration(execution.StepName, end.Sub(execution.StartTime).Seconds())
	}
	return nil, nil
}
