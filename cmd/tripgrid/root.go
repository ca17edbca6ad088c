package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/internal/paths"
	"github.com/mesh-intelligence/tripgrid/internal/syncer"
	"github.com/mesh-intelligence/tripgrid/pkg/sqlite"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// app holds the global flags and the configuration loaded before any
// subcommand runs.
type app struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonOut   bool

	v *viper.Viper
}

// newRootCmd creates the top-level "tripgrid" command with global flags and
// all subcommands registered.
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tripgrid",
		Short: "Plan trips in an editable grid",
		Long: `tripgrid keeps a list of planned trips in a local store, edits them in a
spreadsheet-like terminal grid and replicates them to a sync server.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configure,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default: silent)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newResetCmd(a),
		newSyncCmd(a),
		newEditCmd(a),
		newServeCmd(a),
	)
	return root
}

// configure loads config.yaml and starts logging. It runs once, before the
// subcommand.
func (a *app) configure(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError("%w", err)
	}
	a.v = v

	level := a.logLevel
	if level == "" {
		level = v.GetString(cfgKeyLogLevel)
	}
	if err := logging.Initialize(level); err != nil {
		return userError("%w", err)
	}
	return nil
}

// storeConfig returns the validated store configuration.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError("resolve data dir: %w", err)
	}
	cfg := storeConfig(a.v, dataDir)
	if err := cfg.Validate(); err != nil {
		return cfg, userError("config: %w", err)
	}
	return cfg, nil
}

// openStore attaches the trip store. With replicate set and a sync_url
// configured, the store queues its writes for the sync server. The caller
// must Detach it.
func (a *app) openStore(replicate bool) (types.DataStore, types.Config, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, cfg, err
	}
	var opts []sqlite.Option
	if replicate && cfg.SyncURL != "" {
		opts = append(opts, sqlite.WithReplicator(syncer.NewClient(cfg.SyncURL)))
	}
	store := sqlite.NewBackend(opts...)
	if err := store.Attach(cfg); err != nil {
		return nil, cfg, sysError("attach store: %w", err)
	}
	return store, cfg, nil
}

// openGrid attaches the store and seeds a grid from it. The caller must
// Detach the store.
func (a *app) openGrid() (*grid.Grid, types.DataStore, error) {
	store, cfg, err := a.openStore(true)
	if err != nil {
		return nil, nil, err
	}
	g, err := grid.New(store, cfg)
	if err != nil {
		store.Detach()
		return nil, nil, sysError("grid: %w", err)
	}
	if _, err := g.Refresh(); err != nil {
		store.Detach()
		return nil, nil, sysError("load trips: %w", err)
	}
	return g, store, nil
}

// tripsTable returns the trips table of an attached store.
func tripsTable(store types.DataStore) (types.Table, error) {
	tbl, err := store.GetTable(types.TripsTable)
	if err != nil {
		return nil, sysError("get table: %w", err)
	}
	return tbl, nil
}
