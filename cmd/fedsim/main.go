package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/absmach/fedsim/cli"
	"github.com/absmach/fedsim/pkg/dataset"
	"github.com/absmach/fedsim/pkg/features"
	"github.com/absmach/fedsim/pkg/mqtt"
	"github.com/absmach/fedsim/pkg/prometheus"
	"github.com/absmach/fedsim/pkg/storage"
	"github.com/absmach/fedsim/pkg/tracing"
	"github.com/absmach/fedsim/simulation"
	"github.com/absmach/fedsim/simulation/middleware"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	svcName = "fedsim"
	pathEnv = ".env"
)

type envConfig struct {
	LogLevel   string  `env:"FEDSIM_LOG_LEVEL"   envDefault:"info"`
	LogFormat  string  `env:"FEDSIM_LOG_FORMAT"  envDefault:"json"`
	LogRounds  bool    `env:"FEDSIM_LOG_ROUNDS"  envDefault:"false"`
	InstanceID string  `env:"FEDSIM_INSTANCE_ID"`
	PromDir    string  `env:"FEDSIM_PROM_DIR"`
	OTELURL    url.URL `env:"FEDSIM_OTEL_URL"`
	TraceRatio float64 `env:"FEDSIM_TRACE_RATIO" envDefault:"1"`
	MQTT       mqtt.Config
	Storage    storage.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := tracing.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			return fmt.Errorf("failed to initialize opentelemetry: %w", err)
		}
		defer func() {
			if err := sdktp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	deps := cli.Deps{Logger: logger}
	sinks := simulation.Sinks{
		LogRounds: cfg.LogRounds,
	}

	if cfg.Storage.Enabled() {
		repos, err := storage.NewRepositories(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Type, err)
		}
		if repos.Closer != nil {
			defer repos.Closer.Close()
		}
		sinks.Rounds = repos.Rounds
		deps.HPORepo = repos.HPO
	}

	if cfg.MQTT.Address != "" {
		ps, err := mqtt.NewPubSub(cfg.MQTT, fmt.Sprintf("%s-%s", svcName, cfg.InstanceID), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mqtt pubsub: %w", err)
		}
		defer func() {
			if err := ps.Disconnect(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to disconnect mqtt pubsub", slog.Any("error", err))
			}
		}()
		sinks.PubSub = ps
		deps.PubSub = ps
	}

	if cfg.PromDir != "" {
		if err := os.MkdirAll(cfg.PromDir, 0o755); err != nil {
			return fmt.Errorf("failed to create prometheus directory: %w", err)
		}
		sinks.PromDir = cfg.PromDir
		defer func() {
			if err := prometheus.WriteTextfile(cfg.PromDir); err != nil {
				logger.Warn("failed to write service metrics", slog.Any("error", err))
			}
		}()
	}

	counter, latency := prometheus.MakeMetrics(svcName, "simulation")
	deps.NewService = func(ctx context.Context, dataPath string) (simulation.Service, error) {
		samples, skipped, err := dataset.NewLoader(dataPath, logger).Load(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded dataset",
			slog.String("path", dataPath),
			slog.Int("samples", len(samples)),
			slog.Int("skipped", skipped),
			slog.Any("labels", dataset.LabelDistribution(samples)),
		)

		svc := simulation.NewService(samples, features.NewExtractor(), sinks, logger)
		svc = middleware.Logging(logger, svc)
		svc = middleware.Tracing(tracer, svc)
		svc = middleware.Metrics(counter, latency, svc)

		return svc, nil
	}

	root := cli.NewRootCmd(deps)
	root.AddCommand(cli.NewWatchCmd(deps))

	return root.ExecuteContext(ctx)
}

func newLogger(cfg envConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		log.Printf("unknown log format %q, using json", cfg.LogFormat)

		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
}
