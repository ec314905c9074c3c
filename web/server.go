package web

import (
	"context"
	"net/http"
	"time"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

//Options of the web server, zero values fall back to defaults
type Options struct {
	Addr     string
	Logger   logs.Logger
	Gatherer prometheus.Gatherer
}

//Server echo instance with the default configuration plus resource handlers of the configurers
type Server struct {
	addr     string
	logger   logs.Logger
	echo     *echo.Echo
	registry *ResourceHandlerRegistry
}

// NewServer install defaults first then apply configurers, whose routes never replace a default route
func NewServer(opts Options, configurers ...Configurer) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = logs.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		addr:     opts.Addr,
		logger:   opts.Logger,
		echo:     echo.New(),
		registry: &ResourceHandlerRegistry{},
	}
	s.installDefaults(opts)
	for _, configurer := range configurers {
		configurer.AddResourceHandlers(s.registry)
	}
	if err := s.registry.install(s.echo, s.logger); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) installDefaults(opts Options) {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil {
				s.logger.Warn(ctx, "request %v %v, status:%v, latency:%v, err:%v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			s.logger.Debug(ctx, "request %v %v, status:%v, latency:%v", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "UP", "runningJobs": gobatch.RunningJobs()})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	registerAdmin(e, s.logger)
}

// Registry resource handlers installed on the server
func (s *Server) Registry() *ResourceHandlerRegistry {
	return s.registry
}

// Handler the http handler of the server, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serve until Shutdown, a graceful shutdown is not reported as error
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "web server listening on %v", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "start web server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "web server shutting down")
	return s.echo.Shutdown(ctx)
}
