// Package cli implements the conceptmap command-line interface.
//
// # Commands
//
//   - ancestors, unique, path: query one concept of a map
//   - check: report dangling references and dependency cycles
//   - export: write a map as DOT, SVG, JSON, or TOML
//   - serve: answer queries over HTTP
//   - push: store a data file in MongoDB
//   - cache: manage the render and user-state cache
//
// Query commands read the map from a data file given with --file, or from
// the MongoDB collection named in the config file when --file is omitted.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/internal/config"
	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/store/mongostore"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "conceptmap",
		Short: "Conceptmap explores maps of prerequisite concepts",
		Long: `Conceptmap answers questions about concept maps: which topics a concept
builds on, which of its prerequisites are direct rather than implied, and
what a reader still has to learn before reaching it.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.ancestorsCommand())
	root.AddCommand(c.uniqueCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Map Loading
// =============================================================================

// loadGraph reads the map from file, or from MongoDB when file is empty.
func (c *CLI) loadGraph(ctx context.Context, file string) (*concept.Graph, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if file != "" {
		g, err := pkgio.ImportFile(file)
		if err != nil {
			return nil, err
		}
		prog.done(fmt.Sprintf("Loaded %d concepts from %s", g.Len(), file))
		return g, nil
	}

	if c.cfg.Mongo.URI == "" {
		return nil, cmerrors.New(cmerrors.ErrCodeInvalidInput, "no map to load: pass --file or set mongo.uri in %s", config.DefaultPath())
	}
	store, err := mongostore.Open(ctx, c.mongoConfig())
	if err != nil {
		return nil, fmt.Errorf("open mongo: %w", err)
	}
	defer store.Close(context.WithoutCancel(ctx))

	g, err := store.LoadGraph(ctx)
	if err != nil {
		return nil, cmerrors.FromGraph(err)
	}
	prog.done(fmt.Sprintf("Loaded %d concepts from %s.%s", g.Len(), c.cfg.Mongo.Database, c.cfg.Mongo.Collection))
	return g, nil
}

func (c *CLI) mongoConfig() mongostore.Config {
	return mongostore.Config{
		URI:        c.cfg.Mongo.URI,
		Database:   c.cfg.Mongo.Database,
		Collection: c.cfg.Mongo.Collection,
	}
}

// =============================================================================
// Cache
// =============================================================================

// openCache returns the configured cache: Redis when redis_url is set,
// files under cache_dir otherwise, nothing with noCache.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.WithHooks(rc), nil
	}
	fc, err := cache.NewFileCache(c.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache.WithHooks(fc), nil
}

func (c *CLI) cacheTTL() time.Duration { return c.cfg.CacheTTL.Duration }

// =============================================================================
// Flag Helpers
// =============================================================================

func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", "concept data file (.json or .toml); default reads MongoDB")
}

// conceptArg validates a concept id argument.
func conceptArg(args []string, i int) (string, error) {
	if err := cmerrors.ValidateNodeID(args[i]); err != nil {
		return "", err
	}
	return args[i], nil
}
