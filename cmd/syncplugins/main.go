package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/damoang/angple-plugins/internal/config"
	"github.com/damoang/angple-plugins/internal/database"
	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/repository"
	pkglogger "github.com/damoang/angple-plugins/pkg/logger"
	pkgredis "github.com/damoang/angple-plugins/pkg/redis"
	"github.com/spf13/cobra"

	// 선언 모듈 등록
	_ "github.com/damoang/angple-plugins/internal/cms"
)

type options struct {
	configPath    string
	module        string
	deleteRemoved bool
	migrate       bool
	verbosity     int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "syncplugins",
		Short: "Synchronize declared plugin points and plugins with the database",
		Long: `syncplugins registers declared plugin points and plugins in the database,
reactivates redeclared ones and marks undeclared ones as removed.

With --delete, records marked as removed are deleted permanently.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (default configs/config.$APP_ENV.yaml if present)")
	flags.StringVar(&opts.module, "module", "", "declaration module to load (default plugins.module)")
	flags.BoolVar(&opts.deleteRemoved, "delete", false, "delete records marked as removed")
	flags.BoolVar(&opts.migrate, "migrate", false, "create plugin tables before synchronizing")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 1, "verbosity level: 0 quiet, 1 progress, 2 debug logs")
	return cmd
}

func run(ctx context.Context, out io.Writer, opts options) error {
	config.LoadDotEnv("")
	cfg, err := config.Load(config.ResolvePath(opts.configPath))
	if err != nil {
		return err
	}

	pkglogger.InitStructured(cfg.Env)
	pkglogger.SetOutput(os.Stderr)
	switch {
	case opts.verbosity >= 2:
		pkglogger.SetLevel("debug")
	case opts.verbosity == 0:
		pkglogger.SetLevel("error")
	default:
		pkglogger.SetLevel(cfg.Log.Level)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	repo := repository.NewPluginRepository(db)
	if opts.migrate {
		if err := database.Migrate(repo); err != nil {
			return fmt.Errorf("failed to migrate plugin tables: %w", err)
		}
	}

	module := opts.module
	if module == "" {
		module = cfg.Plugins.Module
	}

	registry := plugin.NewRegistry(
		plugin.WithPointSublevels(cfg.Plugins.AllowPointSublevels),
		plugin.WithRegistryLogger(plugin.NewDefaultLogger("registry")),
	)
	managerOpts := []plugin.ManagerOption{plugin.WithLogger(plugin.NewDefaultLogger("plugin"))}

	// 실행 중인 서버들이 상태 전환을 알 수 있도록 Redis 로 전달
	if cfg.Redis.Enabled() {
		client, err := pkgredis.NewClient(ctx, pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			pkglogger.Warn("Redis unavailable, plugin events will not be published: %v", err)
		} else {
			defer client.Close()
			emitter := plugin.NewRedisEmitter(client, cfg.Redis.Channel, plugin.NewDefaultLogger("redis-emitter"))
			managerOpts = append(managerOpts, plugin.WithEmitter(emitter))
		}
	}

	manager := plugin.NewManager(registry, repo, managerOpts...)
	result, err := manager.Sync(plugin.SyncOptions{
		Module:        module,
		DeleteRemoved: opts.deleteRemoved,
		Verbosity:     opts.verbosity,
		Out:           out,
	})
	if err != nil {
		return err
	}

	if result.Skipped {
		if opts.verbosity >= 1 {
			fmt.Fprintln(out, "Plugin tables do not exist, nothing to synchronize (run with --migrate)")
		}
		return nil
	}
	if opts.verbosity >= 1 {
		fmt.Fprintf(out, "Points: %d created, %d reactivated, %d updated, %d removed, %d deleted\n",
			result.Points.Created, result.Points.Reactivated, result.Points.Updated, result.Points.Removed, result.Points.Deleted)
		fmt.Fprintf(out, "Plugins: %d created, %d reactivated, %d updated, %d removed, %d deleted\n",
			result.Plugins.Created, result.Plugins.Reactivated, result.Plugins.Updated, result.Plugins.Removed, result.Plugins.Deleted)
	}
	return nil
}
