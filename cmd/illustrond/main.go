package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// .env は開発用。無ければそのまま環境変数だけで動きます
	_ = godotenv.Load()

	cfg := loadConfig(viper.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := wireApp(ctx, cfg)
	if err != nil {
		slog.Error("起動時の配線に失敗しました", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: newRouter(a),
	}

	go func() {
		slog.Info("illustrond を起動します", "addr", cfg.ListenAddr, "default_provider", cfg.DefaultProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP サーバーが停止しました", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("シャットダウンがタイムアウトしました", "error", err)
	}
	slog.Info("illustrond を停止しました")
}
