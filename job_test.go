package gobatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/chararch/gobatch-sample/status"
)

type recordingListener struct {
	events   []string
	override *ExitStatus
	failWith BatchError
}

func (l *recordingListener) BeforeStep(ctx context.Context, execution *StepExecution) BatchError {
	l.events = append(l.events, "before:"+string(execution.StepStatus))
	return l.failWith
}

func (l *recordingListener) AfterStep(ctx context.Context, execution *StepExecution) (*ExitStatus, BatchError) {
	l.events = append(l.events, "after:"+string(execution.StepStatus))
	return l.override, nil
}

type jobEvents struct {
	before, after int
	lastStatus    status.BatchStatus
}

func (l *jobEvents) BeforeJob(ctx context.Context, execution *JobExecution) BatchError {
	l.before++
	return nil
}

func (l *jobEvents) AfterJob(ctx context.Context, execution *JobExecution) BatchError {
	l.after++
	l.lastStatus = execution.JobStatus
	return nil
}

func init() {
	SetLogger(logs.Nop())
}

func runJob(t *testing.T, job Job, params string) *JobExecution {
	assert.Equal(t, nil, Register(job))
	defer Unregister(job)
	id, err := Start(context.Background(), job.Name(), params)
	assert.Equal(t, nil, err)
	execution := GetJobExecution(id)
	assert.NotEqual(t, (*JobExecution)(nil), execution)
	return execution
}

func TestJob_CompletedStep(t *testing.T) {
	listener := &recordingListener{}
	calls := 0
	step := NewStep("ok_step").Tasklet(TaskletFunc(func(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
		calls++
		return Finished, nil
	})).Listener(listener).Build()
	jl := &jobEvents{}
	job := NewJob("ok_job", step).Listener(jl).Build()

	execution := runJob(t, job, "")
	assert.Equal(t, status.COMPLETED, execution.JobStatus)
	assert.Equal(t, ExitCompleted, execution.ExitStatus)
	assert.Equal(t, 1, len(execution.StepExecutions))
	assert.Equal(t, status.COMPLETED, execution.StepExecutions[0].StepStatus)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"before:STARTING", "after:COMPLETED"}, listener.events)
	assert.Equal(t, 1, jl.before)
	assert.Equal(t, 1, jl.after)
	assert.Equal(t, status.COMPLETED, jl.lastStatus)
}

func TestJob_FailedStepKeepsMessage(t *testing.T) {
	listener := &recordingListener{}
	step := NewStep("failing_step", TaskletFunc(func(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
		return Finished, errors.New("boom")
	}), listener).Build()
	job := NewJob("failing_job", step).Build()

	execution := runJob(t, job, "")
	assert.Equal(t, status.FAILED, execution.JobStatus)
	assert.Equal(t, "boom", execution.FailMessage())
	assert.Equal(t, "boom", execution.FailError.Error())
	assert.Equal(t, ExitFailed.WithDescription("boom"), execution.ExitStatus)
	assert.Equal(t, status.FAILED, execution.StepExecutions[0].StepStatus)
	assert.Equal(t, []string{"before:STARTING", "after:FAILED"}, listener.events)
}

func TestJob_StopsAfterFailedStep(t *testing.T) {
	secondRan := false
	first := NewStep("first", func() error { return errors.New("first failed") }).Build()
	second := NewStep("second", func() { secondRan = true }).Build()
	job := NewJob("two_steps").Step(first, second).Build()

	execution := runJob(t, job, "")
	assert.Equal(t, status.FAILED, execution.JobStatus)
	assert.Equal(t, 1, len(execution.StepExecutions))
	assert.T(t, !secondRan)
}

func TestStep_ContinuableRepeats(t *testing.T) {
	calls := 0
	step := NewStep("repeat_step").Tasklet(TaskletFunc(func(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
		calls++
		if calls < 3 {
			return Continuable, nil
		}
		return Finished, nil
	})).Build()
	execution := runJob(t, NewJob("repeat_job", step).Build(), "")
	assert.Equal(t, status.COMPLETED, execution.JobStatus)
	assert.Equal(t, 3, calls)
}

func TestStep_ListenerOverrideAndBeforeError(t *testing.T) {
	override := ExitStatus{ExitCode: "CUSTOM"}
	step := NewStep("override_step", func() {}).Listener(&recordingListener{override: &override}).Build()
	execution := runJob(t, NewJob("override_job", step).Build(), "")
	assert.Equal(t, override, execution.StepExecutions[0].ExitStatus)

	ran := false
	blocking := &recordingListener{failWith: NewBatchError(ErrCodeGeneral, "not allowed")}
	blocked := NewStep("blocked_step", func() { ran = true }).Listener(blocking).Build()
	execution = runJob(t, NewJob("blocked_job", blocked).Build(), "")
	assert.T(t, !ran)
	assert.Equal(t, status.FAILED, execution.JobStatus)
	assert.Equal(t, "not allowed", execution.FailMessage())
	assert.Equal(t, []string{"before:STARTING", "after:FAILED"}, blocking.events)
}

func TestStep_TaskletFactoryGetsParams(t *testing.T) {
	var seen interface{}
	step := NewStep("param_step").TaskletFactory(func(params JobParams) (Tasklet, error) {
		seen = params["name"]
		return TaskletFunc(func(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
			return Finished, nil
		}), nil
	}).Build()
	execution := runJob(t, NewJob("param_job", step).Build(), `{"name":"value"}`)
	assert.Equal(t, status.COMPLETED, execution.JobStatus)
	assert.Equal(t, "value", seen)

	bad := NewStep("bad_param_step").TaskletFactory(func(params JobParams) (Tasklet, error) {
		return nil, NewBatchError(ErrCodeParam, "bad parameter")
	}).Build()
	execution = runJob(t, NewJob("bad_param_job", bad).Build(), "")
	assert.Equal(t, status.FAILED, execution.JobStatus)
}

func TestStep_PanicMarksFailed(t *testing.T) {
	listener := &recordingListener{}
	step := NewStep("panic_step", func() { panic("unexpected") }).Listener(listener).Build()
	execution := runJob(t, NewJob("panic_job", step).Build(), "")
	assert.Equal(t, status.FAILED, execution.JobStatus)
	assert.Equal(t, status.FAILED, execution.StepExecutions[0].StepStatus)
	assert.Equal(t, "panic in step execution: unexpected", execution.FailMessage())
	assert.Equal(t, []string{"before:STARTING", "after:FAILED"}, listener.events)
}

func TestJobBuilder_StepListenersNotShared(t *testing.T) {
	own := &recordingListener{}
	step := NewStep("shared_step", func() {}).Listener(own).Build()
	added := &recordingListener{}
	builder := NewJob("rebuilt_job", step).Listener(added)
	builder.Build()
	job := builder.Build()
	other := NewJob("other_job", step).Build()

	runJob(t, job, "")
	assert.Equal(t, []string{"before:STARTING", "after:COMPLETED"}, added.events)
	assert.Equal(t, []string{"before:STARTING", "after:COMPLETED"}, own.events)

	added.events, own.events = nil, nil
	runJob(t, other, "")
	assert.Equal(t, 0, len(added.events))
	assert.Equal(t, []string{"before:STARTING", "after:COMPLETED"}, own.events)
	assert.Equal(t, 1, len(step.(*taskletStep).listeners))
}

func TestBuilders_Panic(t *testing.T) {
	assert.Panic(t, "step name must not be empty", func() { NewStep("") })
	assert.Panic(t, "job name must not be empty", func() { NewJob("") })
	assert.Panic(t, "no handler or tasklet specified for step: empty", func() { NewStep("empty").Build() })
	assert.Panic(t, "invalid handler type:int for step:s", func() { NewStep("s", 1) })
}

func TestOperator_StartErrors(t *testing.T) {
	_, err := Start(context.Background(), "no_such_job", "")
	assert.NotEqual(t, nil, err)

	job := NewJob("params_job", NewStep("s", func() {}).Build()).Build()
	assert.Equal(t, nil, Register(job))
	defer Unregister(job)
	assert.NotEqual(t, nil, Register(job))
	_, err = Start(context.Background(), job.Name(), "{not json")
	assert.NotEqual(t, nil, err)
	assert.T(t, len(JobNames()) > 0)
}

func TestOperator_StartAsyncAndStop(t *testing.T) {
	started := make(chan struct{})
	var once bool
	step := NewStep("slow_step").Tasklet(TaskletFunc(func(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
		if !once {
			once = true
			close(started)
		}
		time.Sleep(5 * time.Millisecond)
		return Continuable, nil
	})).Build()
	job := NewJob("slow_job", step).Build()
	assert.Equal(t, nil, Register(job))
	defer Unregister(job)

	id, err := StartAsync(context.Background(), job.Name(), "")
	assert.Equal(t, nil, err)
	<-started
	assert.Equal(t, nil, Stop(context.Background(), id))

	execution := waitFinished(t, id)
	assert.Equal(t, status.STOPPED, execution.JobStatus)
	assert.Equal(t, "STOPPED", execution.ExitStatus.ExitCode)
	assert.NotEqual(t, nil, Stop(context.Background(), id))

	found := FindJobExecutions(job.Name())
	assert.Equal(t, 1, len(found))
	assert.Equal(t, id, found[0].JobExecutionId)
}

func waitFinished(t *testing.T, id string) *JobExecution {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if e := GetJobExecution(id); e != nil && e.JobStatus.IsFinished() {
			return e
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job execution %v did not finish", id)
	return nil
}

type bothListener struct {
	jobEvents
	recordingListener
}

func TestJobBuilder_ListenerForJobAndSteps(t *testing.T) {
	listener := &bothListener{}
	job := NewJob("both_job").
		Step(NewStep("a", func() {}).Build(), NewStep("b", func() {}).Build()).
		Listener(listener).
		Build()
	execution := runJob(t, job, "")
	assert.Equal(t, status.COMPLETED, execution.JobStatus)
	assert.Equal(t, 1, listener.before)
	assert.Equal(t, 1, listener.after)
	assert.Equal(t, 4, len(listener.events))
	assert.Panic(t, "not supported listener:1 for job:bad", func() {
		NewJob("bad").Listener(1)
	})
}
