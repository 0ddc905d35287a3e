package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/router"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP API",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if port, _ := cmd.Flags().GetString("port"); port != "" {
				a.cfg.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides APP_PORT)")
	return cmd
}

func serve(parent context.Context, a *app) error {
	if a.cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if a.cfg.RabbitURL != "" {
		relay, err := services.NewAMQPRelay(a.cfg.RabbitURL)
		if err != nil {
			utils.ErrorLogger.Printf("Event relay disabled: %v", err)
		} else {
			hub.AddSink(relay.Sink)
			a.cleanup = append(a.cleanup, func() { _ = relay.Close() })
			utils.InfoLogger.Printf("Relaying queue events to %s", services.EventQueueName)
		}
	}

	if a.cfg.Sweep > 0 {
		sweeper := services.NewSweeper(a.queue, a.analytics, a.cfg.Sweep)
		sweeper.OnChange = func(timedOut, assigned int) {
			hub.BroadcastQueueChanged()
		}
		sweeper.Start()
		a.cleanup = append(a.cleanup, sweeper.Stop)
		utils.InfoLogger.Printf("Sweeper running every %s", a.cfg.Sweep)
	}

	r := router.SetupRouter(router.Deps{
		DB:           a.db,
		Queue:        a.queue,
		Analytics:    a.analytics,
		Settings:     a.settings,
		CORSOrigin:   a.cfg.CORSOrigin,
		SecureCookie: a.cfg.GinMode == gin.ReleaseMode,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
