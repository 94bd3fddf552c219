package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/mockmate/interviewroom/internal/application/config"
	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/application/metric"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
	"github.com/mockmate/interviewroom/internal/infra/adapters/postgres"
	"github.com/mockmate/interviewroom/internal/infra/adapters/postgres/repository"
	"github.com/mockmate/interviewroom/internal/infra/ports/http/handlers"
	"github.com/mockmate/interviewroom/internal/infra/ports/http/server"
	"github.com/mockmate/interviewroom/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	interviewRepo := repository.NewInterviewRepo(dbConn)
	roomRegistry := memory.NewRoomRegistry()
	signalConnRepo := memory.NewSignalConnRepository()

	peerUsecase := usecase.NewPeerUsecase(cfg, roomRegistry, signalConnRepo)
	interviewUsecase := usecase.NewInterviewUsecase(cfg, interviewRepo)
	signalingUsecase := usecase.NewSignalingUsecase(interviewRepo, roomRegistry, signalConnRepo, peerUsecase)

	interviewHandler := handlers.NewInterviewHandler(interviewUsecase)
	wsHandler := handlers.NewWebSocketHandler(cfg, signalingUsecase, signalConnRepo)

	echoSrv := server.New(cfg, interviewHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
