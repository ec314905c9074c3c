package gobatch

import "context"

//JobListener job listener
type JobListener interface {
	//BeforeJob execute before job start
	BeforeJob(ctx context.Context, execution *JobExecution) BatchError
	//AfterJob execute after job end either normally or abnormally
	AfterJob(ctx context.Context, execution *JobExecution) BatchError
}

//StepListener step listener
type StepListener interface {
	//BeforeStep execute before step start, an error fails the step without running it
	BeforeStep(ctx context.Context, execution *StepExecution) BatchError
	//AfterStep execute after step end either normally or abnormally.
	//A non-nil ExitStatus replaces the exit status computed for the step, nil keeps it.
	AfterStep(ctx context.Context, execution *StepExecution) (*ExitStatus, BatchError)
}
