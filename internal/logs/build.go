package logs

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	// DefaultRouteKey field whose value selects the routed log file
	DefaultRouteKey = "logFileName"
)

// Options controls how Build assembles the logger
type Options struct {
	Level  LogLevel
	Format string
	// Output receives every entry, stdout when nil
	Output io.Writer
	// Dir enables routed log files when not empty
	Dir        string
	RouteKey   string
	MaxSizeMB  int
	MaxBackups int
}

// Build create the zap logger described by opts, the returned func flushes and closes routed files
func Build(opts Options) (*zap.Logger, func() error, error) {
	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	encCfg := encoderConfig()
	var enc zapcore.Encoder
	if opts.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	level := zap.NewAtomicLevelAt(opts.Level.zapLevel())
	var core zapcore.Core = zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), level)

	closer := func() error { return nil }
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, err
		}
		key := opts.RouteKey
		if key == "" {
			key = DefaultRouteKey
		}
		files := newRouteFiles(opts.Dir, zapcore.NewJSONEncoder(encCfg), level, opts.MaxSizeMB, opts.MaxBackups)
		core = newRoutingCore(core, key, files)
		closer = files.close
	}
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return l, func() error {
		_ = l.Sync()
		return closer()
	}, nil
}
