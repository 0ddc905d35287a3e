package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/queue-app/config"
	"github.com/yeremiapane/queue-app/database"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// app is what every subcommand needs: configuration, a migrated database
// and the queue services on top of it.
type app struct {
	cfg       config.Config
	db        *gorm.DB
	queue     *services.QueueService
	analytics *services.AnalyticsService
	settings  *services.SettingsService
	cleanup   []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

func bootstrap() (*app, error) {
	cfg := config.Load()
	utils.InitLoggerWithLevel(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db}

	var locker services.Locker
	if client := config.NewRedisClient(cfg); client != nil {
		locker = services.NewRedisLocker(client)
		a.cleanup = append(a.cleanup, func() { _ = client.Close() })
		utils.InfoLogger.Printf("Using redis lock at %s", cfg.RedisAddr)
	}

	a.queue = services.NewQueueService(db, locker)
	a.analytics = services.NewAnalyticsService(db, cfg.Location)
	a.settings = services.NewSettingsService(db)
	return a, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "queueapp",
		Short:        "Restaurant queue management service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newAnalyticsCmd())
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
