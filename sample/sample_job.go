package sample

import (
	"context"
	"fmt"
	"io"
	"os"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	JobName  = "job"
	StepName = "step"

	//FailParam job parameter making the tasklet fail when true
	FailParam = "fail"

	ExecutedMessage = "Tasklet was executed"
	ExpectedFailure = "This exception was expected"

	LogFileNameKey   = logs.DefaultRouteKey
	LogFileNameValue = "David"
)

type settings struct {
	out       io.Writer
	logger    logs.Logger
	listeners []interface{}
}

// Option customizes the sample job and its tasklet
type Option func(*settings)

// WithOutput writer receiving the tasklet's console line, stdout by default
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// WithLogger logger of the tasklet and the step listener, the batch logger by default
func WithLogger(l logs.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithListener extra job or step listeners, e.g. metrics
func WithListener(listener ...interface{}) Option {
	return func(s *settings) {
		s.listeners = append(s.listeners, listener...)
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.logger == nil {
		s.logger = gobatch.GetLogger()
	}
	return s
}

//FailableTasklet prints and logs one line, then fails when asked to
type FailableTasklet struct {
	fail   bool
	out    io.Writer
	logger logs.Logger
}

//NewFailableTasklet tasklet failing with the expected error when fail is true
func NewFailableTasklet(fail bool, opts ...Option) *FailableTasklet {
	s := newSettings(opts)
	return &FailableTasklet{fail: fail, out: s.out, logger: s.logger}
}

func (t *FailableTasklet) Execute(ctx context.Context, execution *gobatch.StepExecution) (gobatch.RepeatStatus, error) {
	fmt.Fprintln(t.out, ExecutedMessage)
	// the field lives on this entry only, it routes the entry to David.log
	t.logger.With(zap.String(LogFileNameKey, LogFileNameValue)).Info(ctx, ExecutedMessage)
	if t.fail {
		return gobatch.Finished, errors.New(ExpectedFailure)
	}
	return gobatch.Finished, nil
}

//StepListener logs around the step and never overrides its exit status
type StepListener struct {
	logger logs.Logger
}

//NewStepListener listener logging through the option logger, the batch logger by default
func NewStepListener(opts ...Option) *StepListener {
	return &StepListener{logger: newSettings(opts).logger}
}

func (l *StepListener) BeforeStep(ctx context.Context, execution *gobatch.StepExecution) gobatch.BatchError {
	l.logger.Debug(ctx, "taskletlStepListener beforeStep")
	return nil
}

func (l *StepListener) AfterStep(ctx context.Context, execution *gobatch.StepExecution) (*gobatch.ExitStatus, gobatch.BatchError) {
	l.logger.Debug(ctx, "taskletlStepListener afterStep")
	return nil, nil
}

// TaskletFactory builds the tasklet of one step execution from the fail job parameter, absent or null means false
func TaskletFactory(opts ...Option) gobatch.TaskletFactory {
	return func(params gobatch.JobParams) (gobatch.Tasklet, error) {
		fail, err := params.GetBool(FailParam, false)
		if err != nil {
			return nil, gobatch.NewBatchError(gobatch.ErrCodeParam, "invalid job parameter %v", FailParam, err)
		}
		return NewFailableTasklet(fail, opts...), nil
	}
}

// NewJob job -> step -> failable tasklet, with the step listener on the step
func NewJob(opts ...Option) gobatch.Job {
	s := newSettings(opts)
	step := gobatch.NewStep(StepName).
		TaskletFactory(TaskletFactory(opts...)).
		Listener(NewStepListener(opts...)).
		Build()
	builder := gobatch.NewJob(JobName, step)
	if len(s.listeners) > 0 {
		builder.Listener(s.listeners...)
	}
	return builder.Build()
}
