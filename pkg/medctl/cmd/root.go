package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/meditracker/medctl/pkg/medctl/config"
	"github.com/meditracker/medctl/pkg/medctl/output"
	"github.com/meditracker/medctl/pkg/system"
	"github.com/meditracker/medctl/pkg/telemetry"
	"github.com/meditracker/medctl/pkg/version"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	ErrorWriter  io.Writer
	// EnvFile is loaded before flags are resolved; variables already set win.
	EnvFile string
}

type runtimeState struct {
	configPath       string
	envFile          string
	cfg              *config.Config
	contextOverride  string
	outputFormat     string
	serverOverride   string
	basePathOverride string
	timeoutOverride  time.Duration
	verbose          bool
	traceExporter    string
	traceEndpoint    string
	traceInsecure    bool
	writer           io.Writer
	errWriter        io.Writer
	log              *zap.SugaredLogger
	tracerProvider   trace.TracerProvider
	shutdownTracing  telemetry.ShutdownFunc
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		ErrorWriter:  os.Stderr,
		EnvFile:      ".env",
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		envFile:    cfg.EnvFile,
		writer:     cfg.OutputWriter,
		errWriter:  cfg.ErrorWriter,
	}

	root := &cobra.Command{
		Use:          "medctl",
		Short:        "MediTracker API tester",
		Long:         "medctl exercises the MediTracker medicines REST API: one command, one request, rendered for inspection.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(rt.envFile); err != nil {
				return err
			}
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.errWriter == nil {
				rt.errWriter = os.Stderr
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.contextOverride == "" {
				rt.contextOverride = os.Getenv("MEDCTL_CONTEXT")
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("MEDCTL_OUTPUT")
			}
			if rt.serverOverride == "" {
				rt.serverOverride = os.Getenv("MEDCTL_SERVER")
			}
			if rt.basePathOverride == "" {
				rt.basePathOverride = os.Getenv("MEDCTL_BASE_PATH")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("MEDCTL_VERBOSE"), "true")
			}
			if rt.traceExporter == "" {
				rt.traceExporter = os.Getenv("MEDCTL_TRACE")
			}
			if rt.traceEndpoint == "" {
				rt.traceEndpoint = os.Getenv("MEDCTL_TRACE_ENDPOINT")
			}
			rt.log = system.NewLogger(rt.errWriter, rt.verbose)

			// Skip config loading for commands that don't need it
			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "sample" {
				return nil
			}

			// Medicine commands check their own options before the config file
			// is read; buildClient loads it.
			if cmd.Annotations[lazyConfigAnnotation] == "true" {
				if rt.outputFormat == "" {
					return nil
				}
				_, err := output.ParseFormat(rt.outputFormat)
				return err
			}

			loaded, err := config.LoadOrDefault(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = loaded
			if _, err := output.ParseFormat(rt.OutputFormat()); err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.shutdownTracing == nil {
				return nil
			}
			if err := rt.shutdownTracing(cmd.Context()); err != nil {
				rt.Logger().Warnw("Failed to flush traces", "error", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.contextOverride, "context", "c", "", "Context name override")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: raw, json, yaml, table")
	root.PersistentFlags().StringVar(&rt.serverOverride, "server", "", "API server URL (default "+config.DefaultServer+")")
	root.PersistentFlags().StringVar(&rt.basePathOverride, "base-path", "", "Collection path (default "+config.DefaultBasePath+")")
	root.PersistentFlags().DurationVar(&rt.timeoutOverride, "timeout", 0, "Request timeout (default "+config.DefaultTimeout+")")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Log requests and responses to stderr")
	root.PersistentFlags().StringVar(&rt.traceExporter, "trace", "", "Trace requests with OpenTelemetry: otlp, stdout, none")
	root.PersistentFlags().StringVar(&rt.traceEndpoint, "trace-endpoint", "", "OTLP gRPC collector endpoint (default from OTEL_EXPORTER_OTLP_ENDPOINT)")
	root.PersistentFlags().BoolVar(&rt.traceInsecure, "trace-insecure", false, "Disable TLS for the OTLP exporter")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(newMedicineCommands()...)
	root.AddCommand(
		NewSampleCommand(),
		NewConfigCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) ResolveContextName() string {
	if rt.contextOverride != "" {
		return rt.contextOverride
	}
	if rt.cfg != nil {
		return rt.cfg.CurrentContextOrDefault()
	}
	return ""
}

// ResolveContext returns the selected context, or nil when none is configured.
func (rt *runtimeState) ResolveContext() (*config.Context, error) {
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	name := rt.ResolveContextName()
	if name == "" {
		return nil, nil
	}
	return rt.cfg.FindContext(name)
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return rt.cfg.Settings.OutputFormat
	}
	return string(output.FormatRaw)
}

func (rt *runtimeState) Timeout() (time.Duration, error) {
	if rt.timeoutOverride > 0 {
		return rt.timeoutOverride, nil
	}
	raw := config.DefaultTimeout
	if rt.cfg != nil && rt.cfg.Settings.Timeout != "" {
		raw = rt.cfg.Settings.Timeout
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", raw, err)
	}
	return timeout, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) ErrWriter() io.Writer {
	if rt.errWriter != nil {
		return rt.errWriter
	}
	return os.Stderr
}

func (rt *runtimeState) Logger() *zap.SugaredLogger {
	if rt.log != nil {
		return rt.log
	}
	return zap.NewNop().Sugar()
}

// InitTracing installs the tracer provider once. It is a no-op unless an
// exporter was requested.
func (rt *runtimeState) InitTracing(ctx context.Context) error {
	if rt.traceExporter == "" || rt.tracerProvider != nil {
		return nil
	}
	tp, shutdown, err := telemetry.Init(ctx, telemetry.Options{
		Enabled:        true,
		ServiceName:    telemetry.DefaultServiceName,
		ServiceVersion: version.Version,
		Exporter:       rt.traceExporter,
		Endpoint:       rt.traceEndpoint,
		Insecure:       rt.traceInsecure,
		Writer:         rt.ErrWriter(),
		Logger:         rt.Logger(),
	})
	if err != nil {
		return err
	}
	rt.tracerProvider = tp
	rt.shutdownTracing = shutdown
	return nil
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.LoadOrDefault(rt.configPathValue())
	if err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}
