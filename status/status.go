package status

//BatchStatus status of job or step execution
type BatchStatus string

const (
	//STARTING represent beginning of a job or step execution
	STARTING BatchStatus = "STARTING"
	//STARTED job or step have be started and is running
	STARTED BatchStatus = "STARTED"
	//STOPPING job or step to be stopped
	STOPPING BatchStatus = "STOPPING"
	//STOPPED job or step have be stopped
	STOPPED BatchStatus = "STOPPED"
	//COMPLETED job or step have finished successfully
	COMPLETED BatchStatus = "COMPLETED"
	//FAILED job or step have failed
	FAILED BatchStatus = "FAILED"
	//UNKNOWN job or step have aborted due to unknown reason
	UNKNOWN BatchStatus = "UNKNOWN"
)

// severity order used by And, a later status dominates an earlier one
var statuses = map[BatchStatus]int{
	COMPLETED: 0,
	STARTING:  1,
	STARTED:   2,
	STOPPING:  3,
	STOPPED:   4,
	FAILED:    5,
	UNKNOWN:   6,
}

// And combines two statuses and returns the more severe one
func (s BatchStatus) And(other BatchStatus) BatchStatus {
	i1, ok1 := statuses[s]
	i2, ok2 := statuses[other]
	switch {
	case ok1 && ok2:
		if i1 < i2 {
			return other
		}
		return s
	case ok1:
		return s
	default:
		return other
	}
}

// IsRunning reports whether the execution has not reached an end state yet
func (s BatchStatus) IsRunning() bool {
	return s == STARTING || s == STARTED || s == STOPPING
}

// IsFinished reports whether the execution reached an end state
func (s BatchStatus) IsFinished() bool {
	return s == COMPLETED || s == FAILED || s == STOPPED
}
