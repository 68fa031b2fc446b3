// file: cmd/voicestyle/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/catalog"
	"github.com/dkoosis/voicestyle/internal/config"
	"github.com/dkoosis/voicestyle/internal/httpapi"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcp/dispatch"
	"github.com/dkoosis/voicestyle/internal/mcp/registry"
	"github.com/dkoosis/voicestyle/internal/metrics"
	"github.com/dkoosis/voicestyle/internal/transport"
	"github.com/dkoosis/voicestyle/internal/voice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Transport names accepted by serve --transport.
const (
	transportHTTP     = "http"
	transportStdio    = "stdio"
	transportDispatch = "dispatch"
)

type serveOptions struct {
	transports []string
	configPath string
	port       int
	debug      bool
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the voice profile server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("port") {
				opts.port = 0
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.transports, "transport", []string{transportStdio},
		"Surface to serve (http, stdio or dispatch). Repeat to serve several.")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to configuration file.")
	cmd.Flags().IntVar(&opts.port, "port", config.DefaultPort, "HTTP port (overrides config and PORT).")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging.")
	return cmd
}

// normalizeTransports removes duplicates and rejects unknown names. The two stdio
// surfaces share stdin, so only one of them may run.
func normalizeTransports(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, t := range in {
		switch t {
		case transportHTTP, transportStdio, transportDispatch:
		default:
			return nil, errors.Newf("unknown transport %q: must be http, stdio or dispatch", t)
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if seen[transportStdio] && seen[transportDispatch] {
		return nil, errors.New("stdio and dispatch transports both read stdin; pick one")
	}
	if len(out) == 0 {
		out = []string{transportStdio}
	}
	return out, nil
}

func runServe(ctx context.Context, opts serveOptions) error {
	transports, err := normalizeTransports(opts.transports)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	level := cfg.Log.Level
	if opts.debug {
		level = "debug"
	}
	logging.SetupDefaultLogger(level)
	logger := logging.GetLogger("voicestyle")
	logger.Info("Starting voicestyle server.", "version", Version, "transports", transports, "profile", cfg.Profile.Path)

	store, err := voice.Open(cfg.Profile.Path)
	if err != nil {
		return errors.Wrap(err, "failed to load voice profile")
	}
	catalogs, err := catalog.New(store.Get(), logging.GetLogger("catalog"))
	if err != nil {
		return errors.Wrap(err, "failed to build catalogs")
	}
	collector := metrics.NewCollector()

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range transports {
		run, err := surface(t, cfg, catalogs, collector)
		if err != nil {
			return err
		}
		name := t
		g.Go(func() error {
			if err := run(gctx); err != nil {
				return errors.Wrapf(err, "%s surface failed", name)
			}
			logger.Info("Surface stopped.", "transport", name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server failed.", "error", fmt.Sprintf("%+v", err))
		return err
	}
	logger.Info("Server shut down cleanly.")
	return nil
}

// surface builds the runner for one transport.
func surface(name string, cfg *config.Config, catalogs *catalog.Set, collector *metrics.Collector) (func(context.Context) error, error) {
	switch name {
	case transportHTTP:
		srv, err := httpapi.NewServer(catalogs, httpapi.Info{Name: cfg.Server.Name, Version: cfg.Server.Version},
			httpapi.WithLogger(logging.GetLogger("http")),
			httpapi.WithMetrics(collector),
			httpapi.WithShutdownTimeout(cfg.Server.ShutdownTimeout))
		if err != nil {
			return nil, err
		}
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		return func(ctx context.Context) error { return srv.ListenAndServe(ctx, addr) }, nil

	case transportStdio:
		srv, err := registry.NewServer(catalogs, registry.Info{Name: cfg.Server.Name, Version: cfg.Server.Version},
			registry.WithLogger(logging.GetLogger("registry")),
			registry.WithMetrics(collector))
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return srv.Run(ctx, &mcp.StdioTransport{}) }, nil

	default:
		srv, err := dispatch.NewServer(catalogs, dispatch.Info{Name: cfg.Server.Name, Version: cfg.Server.Version},
			dispatch.WithLogger(logging.GetLogger("dispatch")),
			dispatch.WithMetrics(collector))
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			t := transport.NewNDJSONTransport(os.Stdin, os.Stdout, nil, logging.GetLogger("ndjson"))
			return srv.Serve(ctx, t)
		}, nil
	}
}
