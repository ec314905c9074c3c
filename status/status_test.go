package status

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestBatchStatus_And(t *testing.T) {
	assert.Equal(t, FAILED, COMPLETED.And(FAILED))
	assert.Equal(t, FAILED, FAILED.And(COMPLETED))
	assert.Equal(t, STARTED, STARTING.And(STARTED))
	assert.Equal(t, STARTED, STARTED.And(COMPLETED))
	assert.Equal(t, STOPPED, COMPLETED.And(STOPPED))
	assert.Equal(t, FAILED, STOPPED.And(FAILED))
	assert.Equal(t, COMPLETED, BatchStatus("bogus").And(COMPLETED))
	assert.Equal(t, COMPLETED, COMPLETED.And(BatchStatus("bogus")))
}

func TestBatchStatus_IsFinished(t *testing.T) {
	assert.T(t, COMPLETED.IsFinished())
	assert.T(t, FAILED.IsFinished())
	assert.T(t, STOPPED.IsFinished())
	assert.T(t, !STARTED.IsFinished())
	assert.T(t, STARTED.IsRunning())
	assert.T(t, !UNKNOWN.IsRunning())
}
