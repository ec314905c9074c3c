package gobatch

import (
	"context"
	"fmt"
)

type stepBuilder struct {
	name          string
	factory       TaskletFactory
	stepListeners []StepListener
}

//NewStep initialize a step builder
func NewStep(name string, handler ...interface{}) *stepBuilder {
	if name == "" {
		panic("step name must not be empty")
	}
	builder := &stepBuilder{
		name:          name,
		stepListeners: make([]StepListener, 0),
	}
	for _, h := range handler {
		builder.Handler(h)
	}
	return builder
}

// Handler accept any supported handler shape: Tasklet, TaskletFactory, Task, Handler, plain funcs or a StepListener
func (builder *stepBuilder) Handler(handler interface{}) *stepBuilder {
	valid := false
	switch val := handler.(type) {
	case Tasklet:
		builder.Tasklet(val)
		valid = true
	case TaskletFactory:
		builder.TaskletFactory(val)
		valid = true
	case func(params JobParams) (Tasklet, error):
		builder.TaskletFactory(val)
		valid = true
	case func(ctx context.Context, execution *StepExecution) (RepeatStatus, error):
		builder.Tasklet(TaskletFunc(val))
		valid = true
	case Task:
		builder.Task(val)
		valid = true
	case func(execution *StepExecution) BatchError:
		builder.Task(val)
		valid = true
	case func(execution *StepExecution):
		builder.Task(func(execution *StepExecution) BatchError {
			val(execution)
			return nil
		})
		valid = true
	case func() error:
		builder.Task(func(execution *StepExecution) BatchError {
			if e := val(); e != nil {
				switch et := e.(type) {
				case BatchError:
					return et
				default:
					return NewBatchError(ErrCodeGeneral, "execute step:%v error", execution.StepName, e)
				}
			}
			return nil
		})
		valid = true
	case func():
		builder.Task(func(execution *StepExecution) BatchError {
			val()
			return nil
		})
		valid = true
	case Handler:
		builder.Tasklet(&handlerTasklet{handler: val})
		valid = true
	}
	if l, ok := handler.(StepListener); ok {
		builder.stepListeners = append(builder.stepListeners, l)
		valid = true
	}
	if !valid {
		panic(fmt.Sprintf("invalid handler type:%T for step:%v", handler, builder.name))
	}
	return builder
}

// Tasklet use the same tasklet instance for every execution of the step
func (builder *stepBuilder) Tasklet(tasklet Tasklet) *stepBuilder {
	builder.factory = singleton(tasklet)
	return builder
}

// TaskletFactory build a fresh tasklet from the job parameters for every execution of the step
func (builder *stepBuilder) TaskletFactory(factory TaskletFactory) *stepBuilder {
	builder.factory = factory
	return builder
}

func (builder *stepBuilder) Task(task Task) *stepBuilder {
	return builder.Tasklet(&handlerTasklet{handler: &taskHandler{task: task}})
}

func (builder *stepBuilder) Listener(listener ...StepListener) *stepBuilder {
	builder.stepListeners = append(builder.stepListeners, listener...)
	return builder
}

func (builder *stepBuilder) Build() Step {
	if builder.factory == nil {
		panic(fmt.Sprintf("no handler or tasklet specified for step: %s", builder.name))
	}
	listeners := make([]StepListener, len(builder.stepListeners))
	copy(listeners, builder.stepListeners)
	return newTaskletStep(builder.name, builder.factory, listeners)
}
