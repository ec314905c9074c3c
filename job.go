package gobatch

import (
	"context"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/chararch/gobatch-sample/status"
	"github.com/google/uuid"
)

//Job job interface used by GoBatch
type Job interface {
	Name() string
	Start(ctx context.Context, execution *JobExecution) BatchError
}

type simpleJob struct {
	name      string
	steps     []Step
	listeners []JobListener
}

func newSimpleJob(name string, steps []Step, listeners []JobListener) *simpleJob {
	return &simpleJob{
		name:      name,
		steps:     steps,
		listeners: listeners,
	}
}

func (job *simpleJob) Name() string {
	return job.name
}

func (job *simpleJob) Start(ctx context.Context, execution *JobExecution) (err BatchError) {
	defer func() {
		if er := recover(); er != nil {
			logger.Error(ctx, "panic in job executing, jobName:%v, jobExecutionId:%v, err:%v, stack:%v", job.name, execution.JobExecutionId, er, string(debug.Stack()))
			execution.fail(NewBatchError(ErrCodeGeneral, "panic in job execution: %v", er))
		}
		if err != nil {
			execution.fail(err)
		}
		saveJobExecution(execution)
	}()
	logger.Info(ctx, "start running job, jobName:%v, jobExecutionId:%v", job.name, execution.JobExecutionId)
	for _, listener := range job.listeners {
		err = listener.BeforeJob(ctx, execution)
		if err != nil {
			logger.Error(ctx, "job listener execute err, jobName:%v, jobExecutionId:%+v, listener:%v, err:%v", job.name, execution.JobExecutionId, reflect.TypeOf(listener).String(), err)
			execution.fail(err)
			return nil
		}
	}
	execution.JobStatus = status.STARTED
	execution.ExitStatus = ExitExecuting
	execution.StartTime = time.Now()
	saveJobExecution(execution)

	for _, step := range job.steps {
		stepExecution := execStep(ctx, step, execution)
		if stepExecution.StepStatus != status.COMPLETED {
			logger.Error(ctx, "execute step failed, jobExecutionId:%v, step:%v, stepStatus:%v, err:%v", execution.JobExecutionId, step.Name(), stepExecution.StepStatus, stepExecution.FailError)
			execution.FailError = stepExecution.FailError
		}
		execution.JobStatus = execution.JobStatus.And(stepExecution.StepStatus)
		if stepExecution.StepStatus != status.COMPLETED {
			break
		}
	}
	if execution.JobStatus == status.STARTED {
		execution.JobStatus = status.COMPLETED
	}
	execution.ExitStatus = exitStatusOf(execution)
	execution.EndTime = time.Now()
	for _, listener := range job.listeners {
		err = listener.AfterJob(ctx, execution)
		if err != nil {
			logger.Error(ctx, "job listener execute err, jobName:%v, jobExecutionId:%+v, listener:%v, err:%v", job.name, execution.JobExecutionId, reflect.TypeOf(listener).String(), err)
			execution.fail(err)
			break
		}
	}
	logger.Info(ctx, "finish job execution, jobName:%v, jobExecutionId:%v, jobStatus:%v", job.name, execution.JobExecutionId, execution.JobStatus)
	return nil
}

func exitStatusOf(execution *JobExecution) ExitStatus {
	switch execution.JobStatus {
	case status.COMPLETED:
		return ExitCompleted
	case status.STOPPED:
		return ExitStopped.WithDescription(execution.FailMessage())
	case status.FAILED:
		return ExitFailed.WithDescription(execution.FailMessage())
	}
	return ExitUnknown
}

func execStep(ctx context.Context, step Step, execution *JobExecution) *StepExecution {
	stepExecution := &StepExecution{
		StepExecutionId: uuid.NewString(),
		StepName:        step.Name(),
		StepStatus:      status.STARTING,
		ExitStatus:      ExitExecuting,
		StepContext:     NewBatchContext(),
		JobExecution:    execution,
		CreateTime:      time.Now(),
	}
	execution.AddStepExecution(stepExecution)
	saveStepExecution(stepExecution)
	if err := step.Exec(ctx, stepExecution); err != nil && stepExecution.StepStatus == status.STARTING {
		stepExecution.finish(err)
		saveStepExecution(stepExecution)
	}
	return stepExecution
}
