package gobatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chararch/gobatch-sample/status"
	"github.com/chararch/gobatch-sample/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	registryLock sync.RWMutex
	jobRegistry  = make(map[string]Job)

	// cancel funcs of executions still running, keyed by execution id
	running sync.Map
)

// Register register job to gobatch
func Register(job Job) error {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := jobRegistry[job.Name()]; ok {
		return fmt.Errorf("job with name:%v has already been registered", job.Name())
	}
	jobRegistry[job.Name()] = job
	return nil
}

// Unregister unregister job to gobatch
func Unregister(job Job) {
	registryLock.Lock()
	defer registryLock.Unlock()
	delete(jobRegistry, job.Name())
}

// JobNames names of registered jobs, sorted
func JobNames() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(jobRegistry))
	for name := range jobRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupJob(jobName string) (Job, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	job, ok := jobRegistry[jobName]
	return job, ok
}

// Start start job by job name and params and wait for it to finish.
// The returned error reports launch problems only, the outcome of the job is on its JobExecution.
func Start(ctx context.Context, jobName string, params string) (string, error) {
	return doStart(ctx, jobName, params, false)
}

// StartAsync start job by job name and params asynchronously
func StartAsync(ctx context.Context, jobName string, params string) (string, error) {
	return doStart(ctx, jobName, params, true)
}

func doStart(ctx context.Context, jobName string, params string, async bool) (string, error) {
	job, ok := lookupJob(jobName)
	if !ok {
		logger.Error(ctx, "can not find job with name:%v", jobName)
		return "", errors.Errorf("can not find job with name:%v", jobName)
	}
	jobParams, err := parseJobParams(params)
	if err != nil {
		logger.Error(ctx, "parse job params error, jobName:%v, params:%v, err:%v", jobName, params, err)
		return "", errors.Wrapf(err, "parse params of job %v", jobName)
	}
	execution := &JobExecution{
		JobExecutionId: uuid.NewString(),
		JobName:        jobName,
		JobParams:      jobParams,
		JobStatus:      status.STARTING,
		ExitStatus:     ExitUnknown,
		StepExecutions: make([]*StepExecution, 0),
		JobContext:     NewBatchContext(),
		CreateTime:     time.Now(),
	}
	saveJobExecution(execution)

	// an async run must outlive the request that launched it
	base := ctx
	if async {
		base = context.WithoutCancel(ctx)
	}
	runCtx, cancel := context.WithCancel(base)
	running.Store(execution.JobExecutionId, cancel)
	future := jobPool.Submit(runCtx, func() (interface{}, error) {
		defer func() {
			running.Delete(execution.JobExecutionId)
			cancel()
		}()
		er := job.Start(runCtx, execution)
		if er != nil {
			return nil, er
		}
		return nil, nil
	})
	logger.Info(ctx, "job started, jobName:%v, jobExecutionId:%v", jobName, execution.JobExecutionId)
	if async {
		return execution.JobExecutionId, nil
	}
	if _, er := future.Get(); er != nil {
		return execution.JobExecutionId, er
	}
	return execution.JobExecutionId, nil
}

func parseJobParams(params string) (JobParams, error) {
	ret := make(JobParams)
	if len(params) == 0 {
		return ret, nil
	}
	if err := util.ParseJson(params, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Stop stop a running job execution by cancelling its context
func Stop(ctx context.Context, jobExecutionId string) error {
	execution := findJobExecution(jobExecutionId)
	if execution == nil {
		logger.Error(ctx, "can not find job execution with execution id:%v", jobExecutionId)
		return errors.Errorf("can not find job execution with execution id:%v", jobExecutionId)
	}
	cancel, ok := running.Load(jobExecutionId)
	if !ok || !execution.JobStatus.IsRunning() {
		logger.Error(ctx, "job execution is not running, jobExecutionId:%v, status:%v", jobExecutionId, execution.JobStatus)
		return errors.Errorf("job execution %v is not running, status:%v", jobExecutionId, execution.JobStatus)
	}
	logger.Info(ctx, "job will be stopped, jobName:%v, jobExecutionId:%v", execution.JobName, jobExecutionId)
	cancel.(context.CancelFunc)()
	return nil
}

// GetJobExecution snapshot of a job execution, nil when unknown or expired
func GetJobExecution(jobExecutionId string) *JobExecution {
	return findJobExecution(jobExecutionId)
}

// FindJobExecutions snapshots of the recent executions of a job, newest first
func FindJobExecutions(jobName string) []*JobExecution {
	return findJobExecutionsByName(jobName)
}
