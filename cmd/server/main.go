// Package main runs the pairing and signaling server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pairline/backend/config"
	"github.com/pairline/backend/internal/matchmaking"
	"github.com/pairline/backend/internal/middleware"
	"github.com/pairline/backend/internal/realtime"
	"github.com/pairline/backend/pkg/redis"
	"github.com/pairline/backend/pkg/response"
)

// statsTTLTicks is how many pairing ticks a published snapshot stays readable in Redis.
const statsTTLTicks = 10

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	coordinator := matchmaking.NewCoordinator(matchmaking.Config{
		TickInterval: cfg.Match.TickInterval,
		SkipWindow:   cfg.Match.SkipWindow,
		NameMaxRunes: cfg.Match.NameMaxRunes,
	}, logger.Named("matchmaking"))

	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(runCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("lobby stats publishing disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			publisher := realtime.NewStatsPublisher(rdb.Client, cfg.Redis.StatsChannel, statsTTLTicks*cfg.Match.TickInterval, logger)
			coordinator.SetSnapshotHandler(publisher.Offer)
			go publisher.Run(runCtx)
			logger.Info("lobby stats publishing enabled", zap.String("channel", cfg.Redis.StatsChannel))
		}
	}

	coordinatorDone := make(chan struct{})
	go func() {
		defer close(coordinatorDone)
		coordinator.Run(runCtx)
	}()

	hub := realtime.NewHub(logger)
	origins := middleware.NewOriginPolicy(cfg.Server.CORSAllowedOrigins)
	iceServers := realtime.BuildICEServers(cfg.WebRTC.ICEUrls, cfg.WebRTC.TURNUsername, cfg.WebRTC.TURNCredential)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(origins))
	router.Use(middleware.Logger(logger))
	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "not found") })

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/ice-servers", realtime.ICEServers(iceServers))
	router.GET("/stats", realtime.Stats(coordinator, hub))
	router.GET("/ws", realtime.ServeWs(coordinator, hub, realtime.Options{
		PingInterval:    cfg.WebSocket.PingInterval,
		PingTimeout:     cfg.WebSocket.PingTimeout,
		MaxMessageBytes: cfg.WebSocket.MaxMessageBytes,
		CheckOrigin:     origins.Allowed,
	}, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	hub.CloseAll()
	stop()
	<-coordinatorDone
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
