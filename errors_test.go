package gobatch

import (
	"fmt"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
)

func TestBatchErr_Format(t *testing.T) {
	batchErr := NewBatchError(ErrCodeGeneral, "new error")
	assert.Equal(t, "batch err, code:general, message:new error", batchErr.Error())
	assert.Equal(t, nil, batchErr.Cause())
	assert.T(t, len(batchErr.StackTrace()) > 0)
	fmt.Printf("batchErr detail: %+v\n", batchErr)

	err := fmt.Errorf("some error raised from tasklet")
	batchErr2 := NewBatchError(ErrCodeGeneral, "wrap error", err)
	assert.Equal(t, err, batchErr2.Cause())
	assert.Equal(t, "wrap error", batchErr2.Message())
	assert.T(t, errors.Is(batchErr2, err))

	batchErr3 := NewBatchError(ErrCodeParam, "bad param %v:%v", "fail", "maybe", err)
	assert.Equal(t, "bad param fail:maybe", batchErr3.Message())
	assert.Equal(t, ErrCodeParam, batchErr3.Code())
	assert.Equal(t, err, batchErr3.Cause())
}

func TestNewBatchError_KeepsBatchError(t *testing.T) {
	be := NewBatchError(ErrCodeStop, "stopped")
	assert.Equal(t, be, NewBatchError(ErrCodeGeneral, "", be))
}
