package cli

import (
	"context"
	"fmt"

	gobatch "github.com/chararch/gobatch-sample"
	"github.com/chararch/gobatch-sample/config"
	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/chararch/gobatch-sample/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version set at build time with -ldflags "-X github.com/chararch/gobatch-sample/internal/cli.Version=..."
var Version = "dev"

// app state shared by the sub commands once the config is loaded
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	cfg        *config.Config
	logger     logs.Logger
	prevLogger logs.Logger
	closeLogs  func() error
}

// NewRootCmd command tree of gobatch-sample
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:           "gobatch-sample",
		Short:         "Sample batch job with a failable tasklet and its logs exposed over http",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path of a yaml config file")
	flags.StringVar(&a.envFile, "env-file", "", "path of a .env file loaded into the environment")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-dir", "", "directory of routed log files")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.dir", flags.Lookup("log-dir"))

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute run the command tree, errors are printed to stderr
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// setup load config then configure logging, the job pool, retention and metrics
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configFile, a.envFile)
	if err != nil {
		return err
	}
	opts, err := cfg.LogOptions()
	if err != nil {
		return err
	}
	zl, closeLogs, err := logs.Build(opts)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logs.NewLogger(zl)
	a.closeLogs = closeLogs
	a.prevLogger = gobatch.GetLogger()
	gobatch.SetLogger(a.logger)
	gobatch.SetMaxRunningJobs(cfg.Batch.MaxRunningJobs)
	gobatch.SetExecutionRetention(cfg.Batch.ExecutionRetention)
	if err := metrics.InitializeAll(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	a.logger.Debug(context.Background(), "config loaded, logDir:%v, addr:%v", cfg.Log.Dir, cfg.Server.Addr)
	return nil
}

// teardown give the package logger back before the routed log files are closed
func (a *app) teardown() {
	if a.prevLogger != nil {
		gobatch.SetLogger(a.prevLogger)
		a.prevLogger = nil
	}
	if a.closeLogs != nil {
		_ = a.closeLogs()
		a.closeLogs = nil
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile, a.envFile)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gobatch-sample %s\n", Version)
		},
	}
}
