package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/conceptmap/internal/metrics"
	"github.com/matzehuels/conceptmap/internal/server"
	"github.com/matzehuels/conceptmap/internal/watch"
	"github.com/matzehuels/conceptmap/pkg/cache"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		file     string
		listen   string
		redisURL string
		origins  []string
		noCache  bool
		reload   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a map over HTTP",
		Long: `Serve ancestry queries, rendered maps, and reader progress over HTTP.
Reader progress and rendered SVG are kept in the cache: Redis when a URL is
configured, files under the cache directory otherwise. Prometheus metrics
are exposed at /metrics.

With --watch, the data file is reloaded whenever it changes. A file that
fails to load is logged and the previous map stays in service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				c.cfg.Listen = listen
			}
			if redisURL != "" {
				c.cfg.RedisURL = redisURL
			}
			if reload && file == "" {
				return cmerrors.New(cmerrors.ErrCodeInvalidInput, "--watch requires --file")
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			g, err := c.loadGraph(ctx, file)
			if err != nil {
				return err
			}
			if report := g.Check(); !report.OK() {
				logger.Warn("map has problems; affected queries will fail",
					"dangling", len(report.Dangling), "cycles", len(report.Cycles))
			}

			store, err := c.openCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			m := metrics.New()
			m.Install()

			srv := server.New(server.Options{
				Graph:          g,
				Cache:          store,
				Keyer:          cache.NewDefaultKeyer(),
				CacheTTL:       c.cacheTTL(),
				Metrics:        m,
				Logger:         logger,
				AllowedOrigins: origins,
			})

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return srv.ListenAndServe(egCtx, c.cfg.Listen)
			})
			if reload {
				eg.Go(func() error {
					return watch.File(egCtx, file, watch.DefaultDebounce, logger, func() {
						next, err := pkgio.ImportFile(file)
						if err != nil {
							logger.Warn("reload failed; keeping previous map", "file", file, "err", err)
							return
						}
						srv.SetGraph(next)
						logger.Info("reloaded", "file", file, "nodes", next.Len())
					})
				})
			}
			return eg.Wait()
		},
	}
	addFileFlag(cmd, &file)
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the shared cache")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "browser origins allowed to call the API (default any)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache (reader progress is not kept)")
	cmd.Flags().BoolVarP(&reload, "watch", "w", false, "reload the data file when it changes (requires --file)")
	return cmd
}
