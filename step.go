package gobatch

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/chararch/gobatch-sample/status"
)

// Step step interface
type Step interface {
	Name() string
	Exec(ctx context.Context, execution *StepExecution) BatchError
	withListeners(listeners []StepListener) Step
}

// taskletStep runs the tasklet built for each execution until it reports Finished
type taskletStep struct {
	name      string
	factory   TaskletFactory
	listeners []StepListener
}

func newTaskletStep(name string, factory TaskletFactory, listeners []StepListener) *taskletStep {
	if factory == nil {
		panic(fmt.Sprintf("no tasklet specified for step: %s", name))
	}
	return &taskletStep{
		name:      name,
		factory:   factory,
		listeners: listeners,
	}
}

func (step *taskletStep) Name() string {
	return step.name
}

func (step *taskletStep) Exec(ctx context.Context, execution *StepExecution) (err BatchError) {
	defer func() {
		err = execEnd(ctx, execution, err, recover())
	}()
	jobExecutionId := execution.JobExecution.JobExecutionId
	logger.Info(ctx, "step execute start, jobExecutionId:%v, stepName:%v", jobExecutionId, execution.StepName)
	var e error
	for _, listener := range step.listeners {
		if er := listener.BeforeStep(ctx, execution); er != nil {
			logger.Error(ctx, "step listener executing error, jobExecutionId:%v, stepName:%v, listener:%v, err:%v", jobExecutionId, execution.StepName, reflect.TypeOf(listener).String(), er)
			e = er
			break
		}
	}
	if e == nil {
		execution.start()
		saveStepExecution(execution)
		e = step.runTasklet(ctx, execution)
	}
	if e != nil {
		logger.Error(ctx, "step execute failed, jobExecutionId:%v, stepName:%v, err:%v", jobExecutionId, execution.StepName, e)
	} else {
		logger.Info(ctx, "step execute completed, jobExecutionId:%v, stepName:%v", jobExecutionId, execution.StepName)
	}
	execution.finish(e)
	// after listeners run once whatever happened before them
	for _, listener := range step.listeners {
		exitStatus, er := listener.AfterStep(ctx, execution)
		if er != nil {
			logger.Error(ctx, "step listener executing error, jobExecutionId:%v, stepName:%v, listener:%v, err:%v", jobExecutionId, execution.StepName, reflect.TypeOf(listener).String(), er)
			execution.finish(er)
			break
		}
		if exitStatus != nil {
			execution.ExitStatus = *exitStatus
		}
	}
	logger.Info(ctx, "step execute finish, jobExecutionId:%v, stepName:%v, stepStatus:%v", jobExecutionId, execution.StepName, execution.StepStatus)
	return nil
}

// runTasklet a panic of the tasklet ends the step like an error
func (step *taskletStep) runTasklet(ctx context.Context, execution *StepExecution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "panic in tasklet executing, jobExecutionId:%v, stepName:%v, err:%v, stack:%v", execution.JobExecution.JobExecutionId, execution.StepName, r, string(debug.Stack()))
			err = NewBatchError(ErrCodeGeneral, "panic in step execution: %v", r)
		}
	}()
	tasklet, err := step.factory(execution.JobExecution.JobParams)
	if err != nil {
		return err
	}
	for {
		if ctx.Err() != nil {
			return NewBatchError(ErrCodeStop, "step %v stopped", execution.StepName, ctx.Err())
		}
		rs, err := tasklet.Execute(ctx, execution)
		if err != nil {
			return err
		}
		if rs != Continuable {
			return nil
		}
		execution.LastUpdated = time.Now()
	}
}

func execEnd(ctx context.Context, execution *StepExecution, err BatchError, recoverErr interface{}) BatchError {
	if recoverErr != nil {
		logger.Error(ctx, "panic in step executing, jobExecutionId:%v, stepName:%v, err:%v, stack:%v", execution.JobExecution.JobExecutionId, execution.StepName, recoverErr, string(debug.Stack()))
		execution.finish(NewBatchError(ErrCodeGeneral, "panic in step execution: %v", recoverErr))
	}
	if err != nil && execution.StepStatus != status.FAILED && execution.StepStatus != status.STOPPED {
		logger.Error(ctx, "step executing error, jobExecutionId:%v, stepName:%v, err:%v", execution.JobExecution.JobExecutionId, execution.StepName, err)
		execution.finish(err)
	}
	saveStepExecution(execution)
	return err
}

// withListeners copy of the step with extra listeners, the receiver keeps its own
func (step *taskletStep) withListeners(listeners []StepListener) Step {
	all := make([]StepListener, 0, len(step.listeners)+len(listeners))
	all = append(all, step.listeners...)
	all = append(all, listeners...)
	return newTaskletStep(step.name, step.factory, all)
}
