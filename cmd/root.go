package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/chrisdamba/expcheck/internal/output"
	"github.com/chrisdamba/expcheck/internal/repositories/postgres"
	"github.com/chrisdamba/expcheck/internal/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "expcheck",
	Short: "Validates and analyzes the experiment order dataset",
	Long: `expcheck loads experiment_orders.json, checks that it describes the 20-round,
80-order study design (city rotation, recommendation phase, metadata) and prints
city, phase, alignment, bundle size and earnings analyses for a valid dataset.

The round table can be exported as CSV, JSON or Parquet (locally or to S3),
each run can be published to Kafka and recorded in Postgres.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, (*runner.Runner).Run)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.expcheck.yaml)")

	flags.String("dataset", "", "Dataset location, a file path or s3://bucket/key (default is <program dir>/"+models.DatasetRelPath+")")
	flags.String("first-order-suffix", models.DefaultFirstOrderSuffix, "Id suffix of the order that names a round's city")
	flags.Bool("strict", false, "Exit non-zero when the dataset cannot be loaded or fails validation")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("export-format", "", "Export the round table as csv, json or parquet")
	flags.String("output-path", ".", "Base directory for local exports")
	flags.String("output-folder", "expcheck", "Folder (or object prefix) for exports")
	flags.Bool("show-progress", true, "Show export progress")
	flags.Bool("kafka-enabled", false, "Publish a validation event to Kafka")
	flags.StringSlice("kafka-broker-list", []string{"localhost:9092"}, "Kafka broker list")
	flags.String("kafka-topic", "experiment_validation", "Kafka topic for validation events")
	flags.Bool("record-runs", false, "Record each run in Postgres")

	for key, flag := range map[string]string{
		"dataset":            "dataset",
		"first_order_suffix": "first-order-suffix",
		"strict":             "strict",
		"log_level":          "log-level",
		"export_format":      "export-format",
		"output_path":        "output-path",
		"output_folder":      "output-folder",
		"show_progress":      "show-progress",
		"kafka_enabled":      "kafka-enabled",
		"kafka_broker_list":  "kafka-broker-list",
		"kafka_topic":        "kafka-topic",
		"record_runs":        "record-runs",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

type runFunc func(*runner.Runner, context.Context) (*runner.Outcome, error)

func execute(cmd *cobra.Command, run runFunc) error {
	ctx := cmd.Context()
	r, cleanup, err := newRunner(ctx, cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = run(r, ctx)
	return err
}

// newRunner wires the optional export, event and history sinks described by cfg.
func newRunner(ctx context.Context, cfg *models.Config, out io.Writer, logger *zap.Logger) (*runner.Runner, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	opts := []runner.Option{}

	exporter, err := output.NewExporter(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	if exporter != nil {
		opts = append(opts, runner.WithExporter(exporter))
	}

	if cfg.KafkaEnabled {
		publisher, err := output.NewKafkaPublisher(cfg, logger)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		})
		opts = append(opts, runner.WithPublisher(publisher))
	}

	if cfg.RecordRuns {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		repo := postgres.NewRunRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to create validation_runs table: %w", err)
		}
		opts = append(opts, runner.WithRunRepository(repo))
	}

	return runner.New(cfg, out, logger, opts...), cleanup, nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
