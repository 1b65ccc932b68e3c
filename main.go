package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamenight/planner-api/common"
	"github.com/gamenight/planner-api/common/config"
	"github.com/gamenight/planner-api/common/graceful"
	"github.com/gamenight/planner-api/common/logger"
	"github.com/gamenight/planner-api/middleware"
	"github.com/gamenight/planner-api/monitor"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	"github.com/gamenight/planner-api/relay/cache"
	"github.com/gamenight/planner-api/relay/controller"
	"github.com/gamenight/planner-api/relay/profile"
	"github.com/gamenight/planner-api/relay/retry"
	"github.com/gamenight/planner-api/relay/tokenizer"
	"github.com/gamenight/planner-api/router"
)

func main() {
	common.Init()
	logger.SetupLogger()
	logger.SetupHostLogger()
	logger.Logger.Info("Planner API started", zap.String("version", common.Version))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if config.GeminiAPIKey == "" {
		logger.Logger.Fatal("GEMINI_API_KEY is not set")
	}

	if err := common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}

	tokenizer.Init()

	if config.EnablePrometheusMetrics {
		monitor.InitPrometheusMonitoring(common.Version, runtime.Version(), time.Unix(common.StartTime, 0))
		logger.Logger.Info("Prometheus monitoring initialized")
	}

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// This will cause SSE not to work!!!
	//server.Use(gzip.Gzip(gzip.DefaultCompression))
	server.Use(middleware.RelayPanicRecover())
	server.Use(middleware.RequestId())
	server.Use(middleware.CORS())

	if config.EnablePrometheusMetrics {
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	client := gemini.NewHTTPClient()
	relay := controller.NewRelay(
		profile.NewRegistry(),
		client,
		cache.NewCoordinator(client),
		retry.DefaultPolicy(),
	)
	router.SetRouter(server, relay)

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server,
	}

	go func() {
		logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	graceful.SetDraining()

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := graceful.Drain(shutdownCtx); err != nil {
		logger.Logger.Warn("drain incomplete, forcing shutdown", zap.Error(err))
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Logger.Info("server exited")
}
