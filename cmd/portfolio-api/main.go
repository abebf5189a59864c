// ポートフォリオAPIサービスのエントリポイント。
// コンテンツストアのprojectを中継する読み取りAPIと、ローカルミラーのポーリングを起動する。
// SIGINT/SIGTERMを受けるとHTTPサーバーとポーリングを停止して終了する。
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/portfolio-content/internal/api"
	"github.com/nao1215/portfolio-content/internal/config"
	"github.com/nao1215/portfolio-content/internal/mirror"
	"github.com/nao1215/portfolio-content/pkg/logging"
	"github.com/nao1215/portfolio-content/pkg/sanity"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

func main() {
	path := os.Getenv("STUDIO_CONFIG")
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定が不正です: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("portfolio-api stopped with error", zap.Error(err))
	}
}

// run はHTTPサーバーとミラーのポーリングを起動し、ctxがキャンセルされるまで待つ。
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := sanity.New(cfg.Sanity(), sanity.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("クエリクライアントの初期化に失敗: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	// ミラーのDBパスが空の場合はミラーを無効にする
	var readModel api.ReadModel
	if cfg.Mirror.DBPath != "" {
		m, err := mirror.Open(ctx, cfg.Mirror.DBPath, client,
			mirror.WithInterval(cfg.Mirror.PollInterval),
			mirror.WithLogger(logger.Named("mirror")),
		)
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck
		readModel = m
		g.Go(func() error { return m.Run(ctx) })
	} else {
		logger.Info("mirror disabled")
	}

	server := api.NewServer(client, readModel, api.Settings{
		JWTSecret:   cfg.Server.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger.Named("http"),
	})
	if cfg.Server.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; internal endpoints are disabled")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("portfolio-api listening",
			zap.String("addr", httpServer.Addr),
			zap.String("project_id", cfg.API.ProjectID),
			zap.String("dataset", cfg.API.Dataset),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
		}
		return nil
	})

	return g.Wait()
}
