package gobatch

import (
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
)

//DefaultExecutionRetention how long finished executions stay queryable
const DefaultExecutionRetention = time.Hour

// executions recent job execution snapshots keyed by execution id, kept in memory only
var executions = cache.New(DefaultExecutionRetention, DefaultExecutionRetention/2)

//SetExecutionRetention change how long job executions stay queryable, existing entries are dropped
func SetExecutionRetention(retention time.Duration) {
	if retention <= 0 {
		panic("execution retention must be positive")
	}
	executions = cache.New(retention, retention/2)
}

func saveJobExecution(execution *JobExecution) {
	execution.Version++
	executions.SetDefault(execution.JobExecutionId, execution.deepCopy())
}

func saveStepExecution(execution *StepExecution) {
	execution.LastUpdated = time.Now()
	execution.Version++
	if execution.JobExecution != nil {
		saveJobExecution(execution.JobExecution)
	}
}

func findJobExecution(jobExecutionId string) *JobExecution {
	if v, ok := executions.Get(jobExecutionId); ok {
		return v.(*JobExecution)
	}
	return nil
}

// findJobExecutionsByName newest first
func findJobExecutionsByName(jobName string) []*JobExecution {
	result := make([]*JobExecution, 0)
	for _, item := range executions.Items() {
		if e := item.Object.(*JobExecution); e.JobName == jobName {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreateTime.After(result[j].CreateTime)
	})
	return result
}
