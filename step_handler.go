package gobatch

import "context"

// RepeatStatus tells the tasklet step whether to call the tasklet again
type RepeatStatus int

const (
	//Finished the tasklet has no more work
	Finished RepeatStatus = iota
	//Continuable the tasklet wants to be executed again
	Continuable
)

func (r RepeatStatus) String() string {
	if r == Continuable {
		return "CONTINUABLE"
	}
	return "FINISHED"
}

// Tasklet unit of work executed by a tasklet step
type Tasklet interface {
	Execute(ctx context.Context, execution *StepExecution) (RepeatStatus, error)
}

// TaskletFunc adapts a function to Tasklet
type TaskletFunc func(ctx context.Context, execution *StepExecution) (RepeatStatus, error)

func (f TaskletFunc) Execute(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
	return f(ctx, execution)
}

// TaskletFactory builds the tasklet of one step execution from the job parameters
type TaskletFactory func(params JobParams) (Tasklet, error)

type Task func(execution *StepExecution) BatchError

type Handler interface {
	Handle(execution *StepExecution) BatchError
}

type handlerTasklet struct {
	handler Handler
}

func (h *handlerTasklet) Execute(ctx context.Context, execution *StepExecution) (RepeatStatus, error) {
	if be := h.handler.Handle(execution); be != nil {
		return Finished, be
	}
	return Finished, nil
}

type taskHandler struct {
	task Task
}

func (h *taskHandler) Handle(execution *StepExecution) BatchError {
	return h.task(execution)
}

func singleton(tasklet Tasklet) TaskletFactory {
	return func(JobParams) (Tasklet, error) {
		return tasklet, nil
	}
}
