package sample

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/chararch/gobatch-sample/status"
	"github.com/chararch/gobatch-sample/web"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gobatch.SetLogger(logs.Nop())
}

type run struct {
	execution *gobatch.JobExecution
	stdout    string
	entries   []observer.LoggedEntry
}

func runSample(t *testing.T, params string) run {
	core, recorded := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	job := NewJob(WithOutput(&out), WithLogger(logs.NewLogger(zap.New(core))))
	assert.Equal(t, nil, gobatch.Register(job))
	defer gobatch.Unregister(job)

	id, err := gobatch.Start(context.Background(), JobName, params)
	assert.Equal(t, nil, err)
	execution := gobatch.GetJobExecution(id)
	assert.NotEqual(t, (*gobatch.JobExecution)(nil), execution)
	return run{execution: execution, stdout: out.String(), entries: recorded.All()}
}

func messages(entries []observer.LoggedEntry) []string {
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.Message)
	}
	return ret
}

func assertListenerAndTasklet(t *testing.T, r run) {
	assert.Equal(t, ExecutedMessage+"\n", r.stdout)
	assert.Equal(t, []string{
		"taskletlStepListener beforeStep",
		ExecutedMessage,
		"taskletlStepListener afterStep",
	}, messages(r.entries))
	assert.Equal(t, zapcore.DebugLevel, r.entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, r.entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, r.entries[2].Level)

	// only the tasklet's entry carries the correlation attribute
	assert.Equal(t, LogFileNameValue, r.entries[1].ContextMap()[LogFileNameKey])
	for _, i := range []int{0, 2} {
		_, ok := r.entries[i].ContextMap()[LogFileNameKey]
		assert.T(t, !ok, r.entries[i].Message)
	}
}

func TestSampleJob_NoParams(t *testing.T) {
	r := runSample(t, "")
	assert.Equal(t, status.COMPLETED, r.execution.JobStatus)
	assert.Equal(t, "COMPLETED", r.execution.ExitStatus.ExitCode)
	assert.Equal(t, 1, len(r.execution.StepExecutions))
	assert.Equal(t, StepName, r.execution.StepExecutions[0].StepName)
	assert.Equal(t, status.COMPLETED, r.execution.StepExecutions[0].StepStatus)
	assertListenerAndTasklet(t, r)
}

func TestSampleJob_Fail(t *testing.T) {
	r := runSample(t, `{"fail":true}`)
	assert.Equal(t, status.FAILED, r.execution.JobStatus)
	assert.Equal(t, ExpectedFailure, r.execution.FailMessage())
	assert.Equal(t, ExpectedFailure, r.execution.FailError.Error())
	assert.Equal(t, "FAILED", r.execution.ExitStatus.ExitCode)
	assert.Equal(t, ExpectedFailure, r.execution.ExitStatus.ExitDescription)
	step := r.execution.StepExecutions[0]
	assert.Equal(t, status.FAILED, step.StepStatus)
	assert.Equal(t, ExpectedFailure, step.FailMessage())
	assertListenerAndTasklet(t, r)
}

func TestSampleJob_FailFalse(t *testing.T) {
	r := runSample(t, `{"fail":false}`)
	assert.Equal(t, status.COMPLETED, r.execution.JobStatus)
	assertListenerAndTasklet(t, r)
}

func TestSampleJob_FailParamForms(t *testing.T) {
	assert.Equal(t, status.COMPLETED, runSample(t, `{"fail":null}`).execution.JobStatus)
	assert.Equal(t, status.COMPLETED, runSample(t, `{"other":true}`).execution.JobStatus)
	assert.Equal(t, status.FAILED, runSample(t, `{"fail":"true"}`).execution.JobStatus)

	r := runSample(t, `{"fail":"maybe"}`)
	assert.Equal(t, status.FAILED, r.execution.JobStatus)
	be, ok := r.execution.FailError.(gobatch.BatchError)
	assert.T(t, ok)
	assert.Equal(t, gobatch.ErrCodeParam, be.Code())
	// the tasklet never ran, the listener did
	assert.Equal(t, "", r.stdout)
	assert.Equal(t, []string{"taskletlStepListener beforeStep", "taskletlStepListener afterStep"}, messages(r.entries))
}

func TestFailableTasklet_Execute(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	tasklet := NewFailableTasklet(false, WithOutput(&out), WithLogger(logs.NewLogger(zap.New(core))))
	rs, err := tasklet.Execute(context.Background(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, gobatch.Finished, rs)

	tasklet = NewFailableTasklet(true, WithOutput(&out), WithLogger(logs.NewLogger(zap.New(core))))
	rs, err = tasklet.Execute(context.Background(), nil)
	assert.Equal(t, ExpectedFailure, err.Error())
	assert.Equal(t, gobatch.Finished, rs)

	assert.Equal(t, ExecutedMessage+"\n"+ExecutedMessage+"\n", out.String())
	assert.Equal(t, 2, recorded.FilterField(zap.String(LogFileNameKey, LogFileNameValue)).Len())
}

func TestStepListener_NoOverride(t *testing.T) {
	listener := NewStepListener(WithLogger(logs.Nop()))
	assert.Equal(t, nil, listener.BeforeStep(context.Background(), nil))
	exit, err := listener.AfterStep(context.Background(), nil)
	assert.Equal(t, (*gobatch.ExitStatus)(nil), exit)
	assert.Equal(t, nil, err)
}

func TestSampleJob_LogFileServedUnderLogs(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	zl, closeLogs, err := logs.Build(logs.Options{Level: logs.Debug, Output: &console, Dir: dir})
	assert.Equal(t, nil, err)
	defer closeLogs()

	var out bytes.Buffer
	job := NewJob(WithOutput(&out), WithLogger(logs.NewLogger(zl)))
	assert.Equal(t, nil, gobatch.Register(job))
	defer gobatch.Unregister(job)
	_, err = gobatch.Start(context.Background(), JobName, `{"fail":false}`)
	assert.Equal(t, nil, err)

	routed, err := ioutil.ReadFile(filepath.Join(dir, LogFileNameValue+".log"))
	assert.Equal(t, nil, err)
	assert.T(t, strings.Contains(string(routed), ExecutedMessage), string(routed))
	assert.T(t, !strings.Contains(string(routed), "beforeStep"), string(routed))
	assert.T(t, strings.Contains(console.String(), "taskletlStepListener beforeStep"))

	server, err := web.NewServer(web.Options{Logger: logs.Nop()}, &LogResources{Locations: []string{dir}})
	assert.Equal(t, nil, err)
	assert.T(t, server.Registry().HasMappingForPattern(LogsPattern))
	h := server.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/David.log", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.T(t, strings.Contains(rec.Body.String(), ExecutedMessage))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/nobody.log", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
