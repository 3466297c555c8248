package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/internal/pipeline"
	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/config"
	"github.com/ajitpratap0/tsvstore/pkg/logger"
	"github.com/ajitpratap0/tsvstore/pkg/observability"
	"github.com/ajitpratap0/tsvstore/pkg/staging"
	"github.com/ajitpratap0/tsvstore/pkg/tsv"
)

type loadFlags struct {
	configFile  string
	header      string
	workers     int
	summaryJSON bool
	metricsAddr string
	trace       bool
}

func newLoadCmd() *cobra.Command {
	var flags loadFlags
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "load [data files...]",
		Short: "Load TSV files into a columnar store",
		Long: `Load the data files named in the configuration (or on the command line) and
report a summary of the resulting store. Inputs may be local paths, s3:// or gs:// URLs.

Settings can also come from TSVSTORE_* environment variables, e.g.
TSVSTORE_PERFORMANCE_WORKERS=8. List settings take comma-separated values,
e.g. TSVSTORE_DATA_FILES=part-0.tsv,part-1.tsv or TSVSTORE_COLUMNS_STRING=country.

Example:
  tsvstore load --config load.yaml part-0.tsv.gz part-1.tsv.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, flags.configFile)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.DataFiles = args
			}
			return runLoad(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to YAML load configuration")
	cmd.Flags().StringVar(&flags.header, "header", "", "Header file (overrides header_file)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Worker count for every phase (0 = NumCPU)")
	cmd.Flags().BoolVar(&flags.summaryJSON, "summary-json", false, "Print the store summary as JSON")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the load")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "Export OpenTelemetry spans to stderr")

	_ = v.BindPFlag("header_file", cmd.Flags().Lookup("header"))
	_ = v.BindPFlag("performance.workers", cmd.Flags().Lookup("workers"))
	_ = v.BindPFlag("observability.metrics_addr", cmd.Flags().Lookup("metrics-addr"))
	_ = v.BindPFlag("observability.enable_tracing", cmd.Flags().Lookup("trace"))

	return cmd
}

// loadConfig merges defaults, the optional config file, TSVSTORE_* env
// variables and bound flags, in increasing precedence.
func loadConfig(v *viper.Viper, path string) (*config.LoaderConfig, error) {
	defaults := config.NewLoaderConfig()
	v.SetDefault("header_file", "")
	v.SetDefault("data_files", []string{})
	v.SetDefault("columns.binned_float", []string{})
	v.SetDefault("columns.raw_float", []string{})
	v.SetDefault("columns.string", []string{})
	v.SetDefault("performance.workers", defaults.Performance.Workers)
	v.SetDefault("binning.max_bins", defaults.Binning.MaxBins)
	v.SetDefault("parsing.delimiter", defaults.Parsing.Delimiter)
	v.SetDefault("parsing.missing_values", defaults.Parsing.MissingValues)
	v.SetDefault("parsing.max_line_bytes", defaults.Parsing.MaxLineBytes)
	v.SetDefault("parsing.skip_header_row", false)
	v.SetDefault("observability.log_level", defaults.Observability.LogLevel)
	v.SetDefault("observability.log_encoding", defaults.Observability.LogEncoding)
	v.SetDefault("observability.tracing_sample_rate", defaults.Observability.SampleRate())
	v.SetDefault("staging.dir", "")
	v.SetDefault("staging.aws_region", "")

	v.SetEnvPrefix("TSVSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &config.LoaderConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func runLoad(cmd *cobra.Command, cfg *config.LoaderConfig, flags loadFlags) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().With(zap.String("component", "tsvstore-cli"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultTracingConfig()
		tc.ServiceVersion = version
		tc.SamplingRate = cfg.Observability.SampleRate()
		tc.Writer = cmd.ErrOrStderr()
		shutdown, err := observability.InitTracing(tc)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		srv := serveMetrics(addr, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	resolver := staging.NewResolver(cfg.Staging, staging.WithLogger(log))
	inputs, cleanup, err := resolver.Resolve(ctx, append([]string{cfg.HeaderFile}, cfg.DataFiles...))
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := pipeline.New(pipeline.ConfigFromLoader(cfg), pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	req := pipeline.RequestFromLoader(cfg)
	req.HeaderFile, req.DataFiles = inputs[0], inputs[1:]

	store, err := p.Load(ctx, req)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if flags.summaryJSON {
		return writeSummaryJSON(cmd, store)
	}
	return writeSummaryTable(cmd, store)
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func writeSummaryJSON(cmd *cobra.Command, store *columnar.Store) error {
	data, err := json.MarshalIndent(store.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func writeSummaryTable(cmd *cobra.Command, store *columnar.Store) error {
	sum := store.Summary()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "rows: %d\tcolumns: %d\tbytes: %d\n\n", sum.Rows, len(sum.Columns), sum.MemoryBytes)
	fmt.Fprintln(w, "NAME\tKIND\tBINS\tCARDINALITY\tMISSING\tBYTES")
	for _, c := range sum.Columns {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", c.Name, c.Kind, c.Bins, c.Cardinality, c.Missing, c.MemoryBytes)
	}
	return w.Flush()
}

func newHeaderCmd() *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Print the column names of a header file with their positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(delimiter) != 1 {
				return fmt.Errorf("delimiter must be a single byte, got %q", delimiter)
			}
			names, err := tsv.ReadHeader(args[0], delimiter[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, name := range names {
				fmt.Fprintf(w, "%d\t%s\n", i, name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&delimiter, "delimiter", "\t", "Field delimiter")
	return cmd
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <out.yaml>",
		Short: "Write a starter load configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewLoaderConfig()
			cfg.HeaderFile = "header.tsv"
			cfg.DataFiles = []string{"part-0000.tsv.gz", "part-0001.tsv.gz"}
			cfg.Columns = config.ColumnsConfig{
				BinnedFloat: []string{"age"},
				RawFloat:    []string{"label"},
				String:      []string{"country"},
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}
