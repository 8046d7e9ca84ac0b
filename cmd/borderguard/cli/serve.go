package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkingovr/borderguard/internal/batch"
	"github.com/tkingovr/borderguard/internal/metrics"
	"github.com/tkingovr/borderguard/internal/policy"
	"github.com/tkingovr/borderguard/internal/reference"
	"github.com/tkingovr/borderguard/internal/server"
)

var (
	serveAddr      string
	serveWatchlist string
	serveCountries string
	serveEngine    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision HTTP API",
	Long: `Serve the admission engine over HTTP. Batches posted to /api/v1/decide
are decided against the reference data loaded at startup unless the request
carries its own watchlist and country table. Prometheus metrics are exposed
on /metrics.`,
	Example: `  borderguard serve -c borderguard.yaml
  borderguard serve --addr :8080 --watchlist wl.json --countries countries.json`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveWatchlist, "watchlist", "", "watchlist file (default from config)")
	serveCmd.Flags().StringVar(&serveCountries, "countries", "", "country table file (default from config)")
	serveCmd.Flags().StringVar(&serveEngine, "engine", "", "rule engine: pipeline or opa (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	var ref *reference.Index
	if serveWatchlist != "" || serveCountries != "" || cfg.Watchlist != "" || cfg.Countries != "" {
		var err error
		ref, err = loadReference(serveWatchlist, serveCountries)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no reference data configured; requests must supply watchlist and countries")
	}

	kind := serveEngine
	if kind == "" {
		kind = cfg.Engine
	}
	engine, err := newEngine(kind)
	if err != nil {
		return err
	}

	m := metrics.New()
	srv := server.New(server.Options{
		Addr:      addr,
		Runner:    batch.NewRunner(engine, logger, m, cfg.Workers),
		Metrics:   m,
		Reference: ref,
		IndexOpts: indexOptions(),
		Rules:     policy.NewPipelineEngine(nil).Rules(),
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting serve mode",
		slog.String("addr", addr),
		slog.String("engine", kind),
	)
	return srv.ListenAndServe(ctx)
}
