package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/internal/api"
	"github.com/d60-Lab/pixelpals/internal/api/handler"
	"github.com/d60-Lab/pixelpals/internal/api/middleware"
	"github.com/d60-Lab/pixelpals/internal/live"
	"github.com/d60-Lab/pixelpals/internal/realtime"
	"github.com/d60-Lab/pixelpals/internal/service"
	"github.com/d60-Lab/pixelpals/pkg/logger"
	"github.com/d60-Lab/pixelpals/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gallery HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	store, closeStore, err := realtime.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 写队列
	var writer *service.RemoteWriter
	stopWriter := func(context.Context) error { return nil }
	if store != nil {
		writer = service.NewRemoteWriter(store, cfg.Realtime.QueueSize, cfg.Realtime.WriteTimeout)
		stopWriter = writer.Start(cfg.Realtime.Workers)
	}

	gallery := service.NewGallery(store, writer, service.WithPath(cfg.Realtime.Path))
	hub := live.NewHub()
	go hub.Run(ctx)
	gallery.OnChange(func() {
		hub.Publish(live.Event{Type: live.EventGalleryChanged, Live: gallery.Live()})
	})
	gallery.Start(ctx)
	defer gallery.Close()

	clients := service.NewClients(nil)
	go sweepClients(ctx, clients, cfg.Session.IdleEvict)

	if err := handler.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	codec := service.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL, nil)
	secure := strings.HasPrefix(cfg.Server.PublicURL, "https://")
	sessions := middleware.NewSessions(codec, clients, cfg.Session.CookieName, cfg.Session.TTL, secure)
	h := handler.NewHandler(gallery, writer, sessions, hub, handler.Options{
		AdminName: cfg.Gallery.AdminName,
		PublicURL: cfg.Server.PublicURL,
	})

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(cfg, h, sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("realtime", cfg.Realtime.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopWriter(shutdownCtx); err != nil {
		logger.Warn("remote writer did not drain", zap.Int("pending", writer.QueueLen()), zap.Error(err))
	}
	return nil
}

// sweepClients 定期清理长时间未访问的客户端状态
func sweepClients(ctx context.Context, clients *service.Clients, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := clients.Sweep(idle); n > 0 {
				logger.Debug("evicted idle clients", zap.Int("count", n), zap.Int("remaining", clients.Len()))
			}
		}
	}
}
