package gobatch

import (
	"time"

	"github.com/chararch/gobatch-sample/status"
)

// ExitStatus exit code and description of a job or step execution
type ExitStatus struct {
	ExitCode        string `json:"exitCode"`
	ExitDescription string `json:"exitDescription,omitempty"`
}

var (
	ExitUnknown   = ExitStatus{ExitCode: "UNKNOWN"}
	ExitExecuting = ExitStatus{ExitCode: "EXECUTING"}
	ExitCompleted = ExitStatus{ExitCode: "COMPLETED"}
	ExitFailed    = ExitStatus{ExitCode: "FAILED"}
	ExitStopped   = ExitStatus{ExitCode: "STOPPED"}
)

// WithDescription copy of the exit status with the given description
func (s ExitStatus) WithDescription(desc string) ExitStatus {
	s.ExitDescription = desc
	return s
}

type JobExecution struct {
	JobExecutionId string             `json:"jobExecutionId"`
	JobName        string             `json:"jobName"`
	JobParams      JobParams          `json:"jobParams"`
	JobStatus      status.BatchStatus `json:"status"`
	ExitStatus     ExitStatus         `json:"exitStatus"`
	StepExecutions []*StepExecution   `json:"stepExecutions"`
	JobContext     *BatchContext      `json:"jobContext"`
	CreateTime     time.Time          `json:"createTime"`
	StartTime      time.Time          `json:"startTime"`
	EndTime        time.Time          `json:"endTime"`
	FailError      error              `json:"-"`
	Version        int64              `json:"version"`
}

func (e *JobExecution) AddStepExecution(execution *StepExecution) {
	e.StepExecutions = append(e.StepExecutions, execution)
}

func (e *JobExecution) fail(err error) {
	e.JobStatus = status.FAILED
	e.FailError = err
	e.ExitStatus = ExitFailed.WithDescription(errMessage(err))
	e.EndTime = time.Now()
}

// deepCopy snapshot of the execution, step executions point back to the snapshot
func (e *JobExecution) deepCopy() *JobExecution {
	result := *e
	result.JobParams = e.JobParams.copy()
	if e.JobContext != nil {
		result.JobContext = e.JobContext.DeepCopy()
	}
	result.StepExecutions = make([]*StepExecution, 0, len(e.StepExecutions))
	for _, se := range e.StepExecutions {
		c := *se
		if se.StepContext != nil {
			c.StepContext = se.StepContext.DeepCopy()
		}
		c.JobExecution = &result
		result.StepExecutions = append(result.StepExecutions, &c)
	}
	return &result
}

type StepExecution struct {
	StepExecutionId string             `json:"stepExecutionId"`
	StepName        string             `json:"stepName"`
	StepStatus      status.BatchStatus `json:"status"`
	ExitStatus      ExitStatus         `json:"exitStatus"`
	StepContext     *BatchContext      `json:"stepContext"`
	JobExecution    *JobExecution      `json:"-"`
	CreateTime      time.Time          `json:"createTime"`
	StartTime       time.Time          `json:"startTime"`
	EndTime         time.Time          `json:"endTime"`
	FailError       error              `json:"-"`
	LastUpdated     time.Time          `json:"lastUpdated"`
	Version         int64              `json:"version"`
}

func (execution *StepExecution) finish(err error) {
	execution.EndTime = time.Now()
	if err == nil {
		execution.StepStatus = status.COMPLETED
		execution.ExitStatus = ExitCompleted
		return
	}
	execution.FailError = err
	if be, ok := err.(BatchError); ok && be.Code() == ErrCodeStop {
		execution.StepStatus = status.STOPPED
		execution.ExitStatus = ExitStopped.WithDescription(errMessage(err))
		return
	}
	execution.StepStatus = status.FAILED
	execution.ExitStatus = ExitFailed.WithDescription(errMessage(err))
}

func (execution *StepExecution) start() {
	execution.StartTime = time.Now()
	execution.StepStatus = status.STARTED
	execution.ExitStatus = ExitExecuting
}

// FailMessage message of the failure cause, empty when the execution did not fail
func (e *JobExecution) FailMessage() string {
	return errMessage(e.FailError)
}

// FailMessage message of the failure cause, empty when the execution did not fail
func (execution *StepExecution) FailMessage() string {
	return errMessage(execution.FailError)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	if be, ok := err.(BatchError); ok && be.Cause() != nil {
		return be.Message() + ": " + be.Cause().Error()
	}
	if be, ok := err.(BatchError); ok {
		return be.Message()
	}
	return err.Error()
}
