package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cinema-cli/api"
	"cinema-cli/config"
	"cinema-cli/logging"
	"cinema-cli/metrics"
	"cinema-cli/seatmap"
	"cinema-cli/session"
	"cinema-cli/storage"
	"cinema-cli/workflow"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	outputJSON    bool
	outputCompact bool
	configFile    string

	cfg     = config.Default()
	logger  = zerolog.Nop()
	client  *api.Client
	service *workflow.Service
	closers []io.Closer
)

// errReported marks a failure whose envelope was already printed.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "cinema",
	Short: "Cinema booking client",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON && outputCompact {
			return fmt.Errorf("choose either --json or --compact")
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(studiosCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(cashierCmd())
	rootCmd.AddCommand(ticketsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(ledgerCmd())

	err := rootCmd.Execute()
	teardown()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: <config dir>/config.yaml)")
}

func setup() error {
	path := configFile
	if path == "" {
		defaultPath, err := storage.ConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	storage.UseDir(cfg.Storage.Dir)

	log, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	logger = *log
	if closer != nil {
		closers = append(closers, closer)
	}

	medium, err := storage.OpenSessionFile()
	if err != nil {
		return err
	}
	store := session.NewStore(medium)

	cache, err := newSeatCache()
	if err != nil {
		return err
	}

	client = api.NewClient(cfg.API.BaseURL)
	client.HTTP.Timeout = cfg.API.Timeout
	client.Tokens = store
	client.Logger = logger.With().Str("component", "api").Logger()
	if cfg.API.RateLimit.RPS > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimit.RPS), cfg.API.RateLimit.Burst)
	}
	if cfg.Metrics.Enabled {
		metrics.Register()
		client.Observe = metrics.ObserveRequest
	}

	service = workflow.New(client, store, cache, logger.With().Str("component", "workflow").Logger())
	return nil
}

func newSeatCache() (*seatmap.Cache, error) {
	if cfg.Cache.Backend != "redis" {
		return seatmap.NewMemory(), nil
	}
	rdb := seatmap.NewRedisClient(cfg.Cache.Redis)
	ctx, cancel := commandContext(3 * time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.Redis.Address, err)
	}
	closers = append(closers, rdb)
	return seatmap.New(seatmap.NewRedisBackend(rdb, cfg.Cache.Redis.Prefix)), nil
}

func teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Debug().Err(err).Msg("close")
		}
	}
	closers = nil
}
