package gobatch

import (
	"github.com/chararch/gobatch-sample/internal/logs"
)

//log
var logger = logs.Default()

//SetLogger set a logger instance for GoBatch
func SetLogger(l logs.Logger) {
	if l == nil {
		panic("logger must not be nil")
	}
	logger = l
}

//GetLogger logger used by GoBatch, jobs may log through it
func GetLogger() logs.Logger {
	return logger
}

//task pool
const (
	DefaultJobPoolSize = 10
)

var jobPool = newTaskPool(DefaultJobPoolSize)

//RunningJobs number of jobs executing on the job pool
func RunningJobs() int {
	return jobPool.Running()
}

//SetMaxRunningJobs set max number of parallel jobs for GoBatch
func SetMaxRunningJobs(size int) {
	if size <= 0 {
		panic("max running jobs must be positive")
	}
	jobPool.SetMaxSize(size)
}
