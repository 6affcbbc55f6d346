// Package cli implements the dagedit command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagedit/pkg/buildinfo"
	"github.com/matzehuels/dagedit/pkg/cache"
	"github.com/matzehuels/dagedit/pkg/config"
	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/editor"
	"github.com/matzehuels/dagedit/pkg/graph"
	"github.com/matzehuels/dagedit/pkg/layout"
	"github.com/matzehuels/dagedit/pkg/layout/force"
	"github.com/matzehuels/dagedit/pkg/layout/neato"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dagedit"

	// redisPasswordEnv names the variable holding the Redis password. It is
	// never written to config files.
	redisPasswordEnv = config.EnvPrefix + "REDIS_PASSWORD"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig loads .env files, then the config file given with --config
// (if any) together with DAGEDIT_* overrides.
func (c *CLI) LoadConfig() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("configuration loaded", "file", c.configPath, "engine", cfg.Layout.Engine, "cache", cfg.Cache.Backend)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "dagedit edits multi-parent hierarchies",
		Long:          `dagedit is a CLI tool for editing hierarchies in which a node may have several parents. Every edit is validated against a configurable policy, recorded for undo and laid out without disturbing nodes it did not touch.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML)")

	// Register all subcommands
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.topoCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Editor Factory
// =============================================================================

// newAlgorithm returns the layout engine selected in the configuration.
func (c *CLI) newAlgorithm() layout.Algorithm {
	switch c.Config.Layout.Engine {
	case config.EngineNeato:
		return neato.New(neato.Options{Hierarchical: true})
	case config.EngineHold:
		return layout.Hold
	default:
		return force.New(force.Options{Seed: c.Config.Layout.Seed})
	}
}

// newEditor creates an editor configured from c.Config.
func (c *CLI) newEditor() *editor.Editor {
	return editor.New(editor.Options{
		Policy:    c.Config.ValidationPolicy(),
		History:   c.Config.HistoryOptions(),
		Algorithm: c.newAlgorithm(),
		Viewport:  c.Config.Viewport(),
		Seed:      c.Config.Layout.Seed,
		Logger:    c.Logger,
	})
}

// openDocument reads a graph file into a new editor. Malformed JSON is
// repaired where possible; the caller is told so it can warn before
// overwriting the file.
func (c *CLI) openDocument(path string) (*editor.Editor, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	g, repaired, err := graph.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	nodes, err := graph.ToNodes(g, c.Config.ValidationPolicy().InvariantOptions())
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	e := c.newEditor()
	if err := e.Load(nodes); err != nil {
		return nil, false, fmt.Errorf("load %s: %w", path, err)
	}
	if repaired {
		c.Logger.Warn("repaired malformed JSON", "file", path)
	}
	return e, repaired, nil
}

// =============================================================================
// Session Factory
// =============================================================================

// newCache creates the cache backend selected in the configuration.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendRedis:
		rc := c.Config.RedisConfig()
		rc.Password = os.Getenv(redisPasswordEnv)
		return cache.NewRedisCache(ctx, rc)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, positions will not persist", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSession creates a session over the configured cache. The returned
// function closes the backend.
func (c *CLI) newSession(ctx context.Context, noCache bool) (*editor.Session, func(), error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	s := editor.NewSession(backend, nil, c.Config.Cache.TTL.Duration, c.Logger)
	return s, func() { _ = backend.Close() }, nil
}

// sessionKey returns the identity and layout options positions of path are
// cached under.
func (c *CLI) sessionKey(path string) (string, cache.PositionsKeyOpts) {
	id := path
	if abs, err := filepath.Abs(path); err == nil {
		id = abs
	}
	return id, cache.PositionsKeyOpts{
		Engine: c.Config.Layout.Engine,
		Width:  c.Config.Layout.Width,
		Height: c.Config.Layout.Height,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard location (~/.cache/dagedit/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// viewPath returns the default view file for a graph file.
func viewPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".view.json"
}

// =============================================================================
// Document Helpers
// =============================================================================

// edgeCount returns the number of parent links.
func edgeCount(nodes []dag.Node) int {
	n := 0
	for _, node := range nodes {
		n += len(node.ParentIDs)
	}
	return n
}
