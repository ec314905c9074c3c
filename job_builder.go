package gobatch

import "fmt"

type jobBuilder struct {
	name          string
	steps         []Step
	jobListeners  []JobListener
	stepListeners []StepListener
}

//NewJob new instance of job builder
func NewJob(name string, steps ...Step) *jobBuilder {
	if name == "" {
		panic("job name must not be empty")
	}
	builder := &jobBuilder{
		name:  name,
		steps: steps,
	}
	return builder
}

func (builder *jobBuilder) Step(step ...Step) *jobBuilder {
	builder.steps = append(builder.steps, step...)
	return builder
}

// Listener register job or step listeners, a listener implementing both is registered as both
func (builder *jobBuilder) Listener(listener ...interface{}) *jobBuilder {
	for _, l := range listener {
		valid := false
		if jl, ok := l.(JobListener); ok {
			builder.jobListeners = append(builder.jobListeners, jl)
			valid = true
		}
		if sl, ok := l.(StepListener); ok {
			builder.stepListeners = append(builder.stepListeners, sl)
			valid = true
		}
		if !valid {
			panic(fmt.Sprintf("not supported listener:%+v for job:%v", l, builder.name))
		}
	}
	return builder
}

// Build step listeners of the builder go on copies of the steps, the steps passed in stay as they are
func (builder *jobBuilder) Build() Job {
	if len(builder.steps) == 0 {
		panic(fmt.Sprintf("job %v has no step", builder.name))
	}
	steps := make([]Step, 0, len(builder.steps))
	for _, step := range builder.steps {
		if len(builder.stepListeners) > 0 {
			step = step.withListeners(builder.stepListeners)
		}
		steps = append(steps, step)
	}
	return newSimpleJob(builder.name, steps, builder.jobListeners)
}
