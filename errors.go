package gobatch

import (
	"fmt"

	"github.com/pkg/errors"
)

// BatchError error raised by the framework, carrying a code and an optional cause
type BatchError interface {
	Code() string
	Message() string
	Error() string
	Cause() error
	StackTrace() errors.StackTrace
}

type batchErr struct {
	code  string
	msg   string
	cause error
	stack errors.StackTrace
}

func (err *batchErr) Code() string {
	return err.code
}

func (err *batchErr) Message() string {
	return err.msg
}

func (err *batchErr) Cause() error {
	return err.cause
}

func (err *batchErr) Unwrap() error {
	return err.cause
}

func (err *batchErr) StackTrace() errors.StackTrace {
	return err.stack
}

func (err *batchErr) Error() string {
	if err.cause != nil {
		return fmt.Sprintf("batch err, code:%v, message:%v, cause:%v", err.code, err.msg, err.cause)
	}
	return fmt.Sprintf("batch err, code:%v, message:%v", err.code, err.msg)
}

func (err *batchErr) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", err.Error())
			err.stack.Format(s, verb)
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NewBatchError create a BatchError, a trailing error argument that is not consumed by msg becomes the cause
func NewBatchError(code string, msg string, args ...interface{}) BatchError {
	var cause error
	if n := len(args); n > 0 {
		if e, ok := args[n-1].(error); ok {
			if be, ok := e.(BatchError); ok && len(args) == 1 && msg == "" {
				return be
			}
			cause = e
			args = args[:n-1]
		}
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	// pkg/errors records the caller of New, drop the frame of this function
	st := errors.New(msg).(stackTracer).StackTrace()
	if len(st) > 1 {
		st = st[1:]
	}
	return &batchErr{code: code, msg: msg, cause: cause, stack: st}
}

const (
	ErrCodeStop    = "stop"
	ErrCodeGeneral = "general"
	ErrCodeParam   = "param"
)
