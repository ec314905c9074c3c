package web

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/chararch/gobatch-sample/file"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//Configurer customizes the web layer after its defaults have been installed
type Configurer interface {
	AddResourceHandlers(registry *ResourceHandlerRegistry)
}

//ConfigurerFunc adapts a function to Configurer
type ConfigurerFunc func(registry *ResourceHandlerRegistry)

func (f ConfigurerFunc) AddResourceHandlers(registry *ResourceHandlerRegistry) {
	f(registry)
}

//ResourceHandlerRegistry collects url patterns served from resource locations
type ResourceHandlerRegistry struct {
	registrations []*ResourceHandlerRegistration
}

//ResourceHandlerRegistration the locations serving a set of url patterns
type ResourceHandlerRegistration struct {
	patterns  []string
	locations []string
}

// AddResourceHandler register url patterns, /prefix/** maps a subtree and anything else an exact path
func (r *ResourceHandlerRegistry) AddResourceHandler(patterns ...string) *ResourceHandlerRegistration {
	reg := &ResourceHandlerRegistration{patterns: patterns}
	r.registrations = append(r.registrations, reg)
	return reg
}

// HasMappingForPattern whether a handler was registered for pattern
func (r *ResourceHandlerRegistry) HasMappingForPattern(pattern string) bool {
	for _, reg := range r.registrations {
		for _, p := range reg.patterns {
			if p == pattern {
				return true
			}
		}
	}
	return false
}

// AddResourceLocations locations tried in order, see file.ParseLocation for the accepted forms
func (reg *ResourceHandlerRegistration) AddResourceLocations(locations ...string) *ResourceHandlerRegistration {
	reg.locations = append(reg.locations, locations...)
	return reg
}

func (reg *ResourceHandlerRegistration) Patterns() []string {
	return reg.patterns
}

func (reg *ResourceHandlerRegistration) Locations() []string {
	return reg.locations
}

// install add a GET route per pattern, routes that already exist are left untouched
func (r *ResourceHandlerRegistry) install(e *echo.Echo, logger logs.Logger) error {
	existing := make(map[string]bool)
	for _, route := range e.Routes() {
		existing[route.Method+" "+route.Path] = true
	}
	for _, reg := range r.registrations {
		storages := make([]file.FileStorage, 0, len(reg.locations))
		for _, location := range reg.locations {
			fs, err := file.ParseLocation(location)
			if err != nil {
				return errors.Wrapf(err, "resource handler %v", reg.patterns)
			}
			storages = append(storages, fs)
		}
		for _, pattern := range reg.patterns {
			route, subtree := routeOf(pattern)
			if existing[http.MethodGet+" "+route] {
				logger.Warn(context.Background(), "resource pattern %v conflicts with an existing route, skipped", pattern)
				continue
			}
			h := &resourceHandler{locations: storages, subtree: subtree, name: path.Base(route), logger: logger}
			e.GET(route, h.serve)
			existing[http.MethodGet+" "+route] = true
			logger.Info(context.Background(), "mapped resource pattern %v to locations %v", pattern, reg.locations)
		}
	}
	return nil
}

func routeOf(pattern string) (string, bool) {
	if strings.HasSuffix(pattern, "/**") {
		return strings.TrimSuffix(pattern, "**") + "*", true
	}
	return pattern, false
}

type resourceHandler struct {
	locations []file.FileStorage
	subtree   bool
	name      string
	logger    logs.Logger
}

func (h *resourceHandler) serve(c echo.Context) error {
	name := h.name
	if h.subtree {
		n, err := url.PathUnescape(c.Param("*"))
		if err != nil {
			return echo.ErrNotFound
		}
		name = n
	}
	ctx := c.Request().Context()
	for _, location := range h.locations {
		ok, err := location.Exists(name)
		if err != nil {
			h.logger.Warn(ctx, "check resource failed, location:%v, name:%v, err:%v", location, name, err)
			continue
		}
		if !ok {
			continue
		}
		if local, ok := location.(*file.LocalFileSystem); ok {
			p, _ := local.LocalPath(name)
			return serveLocal(c, p)
		}
		reader, err := location.Open(name)
		if err != nil {
			h.logger.Warn(ctx, "open resource failed, location:%v, name:%v, err:%v", location, name, err)
			continue
		}
		defer reader.Close()
		return c.Stream(http.StatusOK, contentType(name), reader)
	}
	return echo.ErrNotFound
}

func serveLocal(c echo.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return echo.ErrNotFound
	}
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return echo.MIMEOctetStream
}
