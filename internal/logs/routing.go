package logs

import (
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// routingCore writes every entry to the wrapped core and, when the entry or the logger
// carries the route key, also to <dir>/<value>.log
type routingCore struct {
	zapcore.Core
	key    string
	route  string
	fields []zapcore.Field
	files  *routeFiles
}

func newRoutingCore(core zapcore.Core, key string, files *routeFiles) *routingCore {
	return &routingCore{Core: core, key: key, files: files}
}

func (c *routingCore) With(fields []zapcore.Field) zapcore.Core {
	route := c.route
	if r, ok := routeOf(c.key, fields); ok {
		route = r
	}
	bound := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	bound = append(bound, c.fields...)
	bound = append(bound, fields...)
	return &routingCore{
		Core:   c.Core.With(fields),
		key:    c.key,
		route:  route,
		fields: bound,
		files:  c.files,
	}
}

func (c *routingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *routingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	err := c.Core.Write(ent, fields)
	route := c.route
	if r, ok := routeOf(c.key, fields); ok {
		route = r
	}
	if route == "" {
		return err
	}
	fc, e := c.files.core(route)
	if e != nil {
		return multierr.Append(err, e)
	}
	if len(c.fields) > 0 {
		fc = fc.With(c.fields)
	}
	return multierr.Append(err, fc.Write(ent, fields))
}

func (c *routingCore) Sync() error {
	return multierr.Append(c.Core.Sync(), c.files.sync())
}

func routeOf(key string, fields []zapcore.Field) (string, bool) {
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		if f.Key == key && f.Type == zapcore.StringType {
			return sanitizeRoute(f.String), true
		}
	}
	return "", false
}

// sanitizeRoute reduce a route value to a plain file name inside the log dir
func sanitizeRoute(route string) string {
	route = strings.TrimSpace(route)
	route = filepath.Base(strings.ReplaceAll(route, "\\", "/"))
	if route == "." || route == ".." || route == "/" {
		return ""
	}
	return route
}

type routeFiles struct {
	mu         sync.Mutex
	dir        string
	enc        zapcore.Encoder
	level      zapcore.LevelEnabler
	maxSizeMB  int
	maxBackups int
	cores      map[string]zapcore.Core
	writers    []*lumberjack.Logger
}

func newRouteFiles(dir string, enc zapcore.Encoder, level zapcore.LevelEnabler, maxSizeMB, maxBackups int) *routeFiles {
	return &routeFiles{
		dir:        dir,
		enc:        enc,
		level:      level,
		maxSizeMB:  maxSizeMB,
		maxBackups: maxBackups,
		cores:      map[string]zapcore.Core{},
	}
}

func (f *routeFiles) core(route string) (zapcore.Core, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cores[route]; ok {
		return c, nil
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(f.dir, route+".log"),
		MaxSize:    f.maxSizeMB,
		MaxBackups: f.maxBackups,
	}
	c := zapcore.NewCore(f.enc.Clone(), zapcore.AddSync(w), f.level)
	f.cores[route] = c
	f.writers = append(f.writers, w)
	return c, nil
}

func (f *routeFiles) sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	for _, c := range f.cores {
		err = multierr.Append(err, c.Sync())
	}
	return err
}

func (f *routeFiles) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	for _, w := range f.writers {
		err = multierr.Append(err, w.Close())
	}
	f.cores = map[string]zapcore.Core{}
	f.writers = nil
	return err
}
