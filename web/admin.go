package web

import (
	"io"
	"net/http"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/labstack/echo/v4"
)

type executionView struct {
	*gobatch.JobExecution
	FailMessage string `json:"failMessage,omitempty"`
}

type launchResult struct {
	JobExecutionId string `json:"jobExecutionId"`
}

type admin struct {
	logger logs.Logger
}

func registerAdmin(e *echo.Echo, logger logs.Logger) {
	a := &admin{logger: logger}
	e.GET("/jobs", a.listJobs)
	e.POST("/jobs/:name/executions", a.launch)
	e.GET("/jobs/:name/executions", a.listExecutions)
	e.GET("/executions/:id", a.getExecution)
	e.DELETE("/executions/:id", a.stop)
}

func viewOf(execution *gobatch.JobExecution) executionView {
	return executionView{JobExecution: execution, FailMessage: execution.FailMessage()}
}

func knownJob(name string) bool {
	for _, n := range gobatch.JobNames() {
		if n == name {
			return true
		}
	}
	return false
}

func (a *admin) listJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, gobatch.JobNames())
}

// launch start a job asynchronously, the request body holds the json job params
func (a *admin) launch(c echo.Context) error {
	name := c.Param("name")
	if !knownJob(name) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job: "+name)
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := gobatch.StartAsync(c.Request().Context(), name, string(body))
	if err != nil {
		a.logger.Warn(c.Request().Context(), "launch job failed, jobName:%v, err:%v", name, err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusAccepted, launchResult{JobExecutionId: id})
}

func (a *admin) listExecutions(c echo.Context) error {
	name := c.Param("name")
	if !knownJob(name) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job: "+name)
	}
	executions := gobatch.FindJobExecutions(name)
	views := make([]executionView, 0, len(executions))
	for _, execution := range executions {
		views = append(views, viewOf(execution))
	}
	return c.JSON(http.StatusOK, views)
}

func (a *admin) getExecution(c echo.Context) error {
	execution := gobatch.GetJobExecution(c.Param("id"))
	if execution == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job execution: "+c.Param("id"))
	}
	return c.JSON(http.StatusOK, viewOf(execution))
}

func (a *admin) stop(c echo.Context) error {
	id := c.Param("id")
	if gobatch.GetJobExecution(id) == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job execution: "+id)
	}
	if err := gobatch.Stop(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusAccepted, launchResult{JobExecutionId: id})
}
