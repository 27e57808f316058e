package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursegen/ai"
	"coursegen/cache"
	configs "coursegen/config"
	"coursegen/handler"
	"coursegen/logger"
	"coursegen/media"
	"coursegen/middleware"
	"coursegen/mongoconn"
	"coursegen/natsclient"
	"coursegen/repository"
	"coursegen/service"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	configValues := configs.LoadConfig()

	appLogger, err := logger.New(configValues.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()
	traceID := uuid.New().String()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoclientInstance, err := mongoconn.ConnectDB(ctx, configValues.MongoDBURL)
	if err != nil {
		appLogger.Log(zapcore.FatalLevel, traceID, "Failed to connect to MongoDB", map[string]any{"method": "main"}, "BOOT", err)
	}
	defer mongoclientInstance.Disconnect(context.Background())
	repoInstance := repository.NewRepository(mongoclientInstance, configValues.MongoDatabase)

	redisClient := cache.NewRedisClient(configValues.RedisURL, configValues.RedisPassword, 0)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, appLogger)

	deps := service.Deps{
		Courses:     repoInstance,
		Tracks:      repoInstance,
		Templates:   repoInstance,
		Projects:    repoInstance,
		Quizzes:     repoInstance,
		Cache:       redisCache,
		Transcripts: media.NewTimedTextFetcher(),
		Logger:      appLogger,
	}

	natsClient, err := natsclient.NewNatsClient(configValues.NATSURL)
	if err != nil {
		appLogger.Log(zapcore.WarnLevel, traceID, "NATS unavailable, events disabled", map[string]any{"method": "main"}, "BOOT", err)
	} else {
		defer natsClient.Close()
		deps.Events = natsClient
	}

	aiClient, err := ai.NewClient(configValues.AIAPIKey, configValues.AIBaseURL, configValues.AIModel)
	if err != nil {
		appLogger.Log(zapcore.WarnLevel, traceID, "AI provider not configured", map[string]any{"method": "main"}, "BOOT", err)
	} else {
		deps.AI = aiClient
	}
	deps.AIWithKey = func(apiKey string) (ai.TextGenerator, error) {
		if aiClient != nil {
			return aiClient.WithAPIKey(apiKey), nil
		}
		keyed, err := ai.NewClient(apiKey, configValues.AIBaseURL, configValues.AIModel)
		if err != nil {
			return nil, err
		}
		return keyed, nil
	}

	if yt, err := media.NewYouTubeSearcher(ctx, configValues.YouTubeAPIKey); err != nil {
		appLogger.Log(zapcore.WarnLevel, traceID, "Video search disabled", map[string]any{"method": "main"}, "BOOT", err)
	} else {
		deps.Videos = yt
	}

	var imageSources []media.ImageSource
	if gis, err := media.NewGoogleImageSearch(ctx, configValues.ImageSearchAPIKey, configValues.ImageSearchCX); err == nil {
		imageSources = append(imageSources, gis)
	}
	var unsplash media.ImageSource
	if configValues.UnsplashAccessKey != "" {
		unsplash = media.NewUnsplash(configValues.UnsplashAccessKey)
		imageSources = append(imageSources, unsplash)
	}
	deps.Images = media.NewImageFinder(media.PlaceholderImage, imageSources...)
	deps.Covers = media.NewImageFinder(media.PlaceholderCourseImage, unsplash)

	serviceInstance := service.NewService(deps)

	scheduler, err := serviceInstance.StartCronJob(configValues.StreakCron)
	if err != nil {
		appLogger.Log(zapcore.FatalLevel, traceID, "Invalid streak schedule", map[string]any{"schedule": configValues.StreakCron}, "BOOT", err)
	}
	defer scheduler.Stop()

	if natsClient != nil {
		if _, err := serviceInstance.SubscribeScoreEvents(natsClient); err != nil {
			appLogger.Log(zapcore.ErrorLevel, traceID, "Failed to subscribe to score events", map[string]any{"method": "main"}, "BOOT", err)
		}
	}

	// gRPC health server
	lis, err := net.Listen("tcp", ":"+configValues.GRPCPort)
	if err != nil {
		appLogger.Log(zapcore.FatalLevel, traceID, "Failed to listen for gRPC", map[string]any{"port": configValues.GRPCPort}, "BOOT", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go watchHealth(ctx, healthServer, repoInstance)
	go func() {
		appLogger.Log(zapcore.InfoLevel, traceID, "gRPC health server running", map[string]any{"port": configValues.GRPCPort}, "BOOT", nil)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Log(zapcore.ErrorLevel, traceID, "gRPC server stopped", nil, "BOOT", err)
		}
	}()

	limiter := middleware.NewRateLimiter(redisClient, appLogger)
	router := handler.NewRouter(handler.NewHandler(serviceInstance, appLogger), limiter, appLogger, handler.RouterConfig{
		AllowedOrigins: configValues.AllowedOrigins,
		JWTSecret:      configValues.JWTSecret,
	})
	httpServer := &http.Server{
		Addr:              ":" + configValues.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Log(zapcore.InfoLevel, traceID, "HTTP server running", map[string]any{"port": configValues.HTTPPort}, "BOOT", nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Log(zapcore.ErrorLevel, traceID, "HTTP server stopped", nil, "BOOT", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Log(zapcore.InfoLevel, traceID, "Shutting down", nil, "BOOT", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	healthServer.Shutdown()
	grpcServer.GracefulStop()
}

// watchHealth flips the gRPC health status with MongoDB reachability.
func watchHealth(ctx context.Context, hs *health.Server, repo *repository.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		status := healthpb.HealthCheckResponse_SERVING
		if err := repo.Ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		cancel()
		hs.SetServingStatus("", status)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
