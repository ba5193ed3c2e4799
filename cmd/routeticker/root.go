package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrdunk/routeticker/internal/badgerstore"
	"github.com/mrdunk/routeticker/internal/memstore"
	"github.com/mrdunk/routeticker/internal/paths"
	"github.com/mrdunk/routeticker/internal/sqlitestore"
	"github.com/mrdunk/routeticker/pkg/element"
	"github.com/mrdunk/routeticker/pkg/types"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagBackend   string
	flagUser      string
	flagEmail     string
	flagAdmin     bool
	flagJSON      bool
	flagVerbose   bool
)

// closableStore is what every backend under internal/ provides.
type closableStore interface {
	types.Store
	Close() error
}

// Opened by PersistentPreRunE for every command except version/help.
var (
	store  closableStore
	engine *element.Engine
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "routeticker",
	Short:        "Routeticker maintains a climbing-guide content tree",
	Long: `Routeticker maintains a hierarchical climbing-guide content tree
(root, areas, crags, climbs) where every node carries user-attributed
attributes such as names and descriptions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return openEngine()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeEngine()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.routeticker-db)")
	pf.StringVar(&flagBackend, "backend", "", "store backend: memory, sqlite, or badger (default: sqlite)")
	pf.StringVar(&flagUser, "user", "", "acting user ID (overrides config)")
	pf.StringVar(&flagEmail, "email", "", "acting user email (overrides config)")
	pf.BoolVar(&flagAdmin, "admin", false, "act as an administrator")
	pf.BoolVar(&flagJSON, "json", false, "output as JSON")
	pf.BoolVar(&flagVerbose, "verbose", false, "log engine and store activity to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(activateCmd)
}

// openEngine loads config, opens the selected backend, and builds the tree
// engine with a static identity for the acting user.
func openEngine() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
	} else {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case types.BackendMemory:
		store, err = memstore.Open(cfg)
	case types.BackendSQLite:
		store, err = sqlitestore.Open(cfg, logger)
	case types.BackendBadger:
		store, err = badgerstore.Open(cfg, logger)
	default:
		err = fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	ident := &types.StaticIdentity{User: cfg.User, Admin: cfg.Admin}
	engine = element.New(store, ident, logger)
	return nil
}

// closeEngine releases the store and flushes the logger.
func closeEngine() error {
	if logger != nil {
		_ = logger.Sync()
	}
	if store != nil {
		return store.Close()
	}
	return nil
}

// resolveDataDir applies the flag > config.yaml > env > CWD default chain.
func resolveDataDir(configValue string) (string, error) {
	return paths.ResolveDataDir(flagDataDir, configValue)
}
