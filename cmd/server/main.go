package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/statwatch/survmeter/internal/cache"
	apperrors "github.com/statwatch/survmeter/internal/errors"
	"github.com/statwatch/survmeter/internal/monitoring"
	"github.com/statwatch/survmeter/internal/predictor"
	"github.com/statwatch/survmeter/internal/ratelimit"
	"github.com/statwatch/survmeter/internal/survival"
	"github.com/statwatch/survmeter/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	port := getEnvOrDefault("PORT", "8080")

	r := setupRouter()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting evaluation server", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

// setupRouter wires middleware and routes; extracted so tests can build the
// full stack without binding a port.
func setupRouter() *gin.Engine {
	workers := getEnvIntOrDefault("EVAL_WORKERS", 0)
	cacheTTL := time.Duration(getEnvIntOrDefault("CACHE_TTL_MINUTES", 15)) * time.Minute
	ipLimit := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", ratelimit.DefaultConfig().RequestsPerMin)

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()
	if getEnvOrDefault("LOG_LEVEL", "info") == "debug" {
		appLogger.SetLevel(slog.LevelDebug)
	}

	var evalOpts []survival.Option
	if workers > 0 {
		evalOpts = append(evalOpts, survival.WithWorkers(workers))
	}
	evaluator := survival.NewEvaluator(evalOpts...)

	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.RequestsPerMin = ipLimit
	limiter := ratelimit.NewLimiter(limiterConfig, appMetrics)
	r.Use(limiter.Middleware())

	appCache := cache.NewCache(cacheTTL)
	r.Use(appCache.Middleware(appMetrics, appLogger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   appMetrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/evaluate", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		start := time.Now()

		var req types.EvaluateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := apperrors.NewValidationError("invalid request body", err.Error())
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		probs, appErr := resolveProbabilities(&req)
		if appErr != nil {
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		res, err := evaluator.Evaluate(ctx, req.Observations, req.Times, probs)
		if err != nil {
			appErr := apperrors.ToAppError(err)
			if errors.Is(err, survival.ErrInvalidInput) {
				appErr = apperrors.NewValidationError(err.Error())
			}
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		undefinedRows := 0
		for _, row := range res.Metrics {
			if !row.Defined {
				undefinedRows++
			}
		}
		appMetrics.RecordEvaluation(len(req.Observations), undefinedRows)
		appLogger.EvaluationLogger(len(req.Observations), len(req.Times), undefinedRows, time.Since(start), c.GetBool("cache_hit"))

		c.JSON(http.StatusOK, types.EvaluateResponse{
			Metrics:         res.Metrics,
			IntegratedBrier: res.IntegratedBrier,
			ROC:             res.ROC,
		})
	})

	return r
}

// resolveProbabilities turns the request into a survival matrix aligned to
// the requested evaluation times.
func resolveProbabilities(req *types.EvaluateRequest) ([][]float64, *apperrors.AppError) {
	switch req.Predictor {
	case "", types.PredictorMatrix:
		if len(req.Probabilities) == 0 {
			return nil, apperrors.NewValidationError("probabilities are required when no predictor is selected")
		}
		curves, err := predictor.NewStepCurves(req.Times, req.Probabilities)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid survival curves", err.Error())
		}
		probs, err := curves.PredictSurvival(req.Times)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid survival curves", err.Error())
		}
		return probs, nil

	case types.PredictorKaplanMeier:
		base, err := predictor.NewKaplanMeierBaseline(req.Observations)
		if err != nil {
			return nil, apperrors.NewValidationError("baseline predictor fit failed", err.Error())
		}
		probs, err := base.PredictSurvival(req.Times)
		if err != nil {
			return nil, apperrors.NewValidationError("baseline prediction failed", err.Error())
		}
		return probs, nil

	default:
		return nil, apperrors.NewValidationError("unknown predictor: " + req.Predictor)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		appErr := apperrors.NewConfigurationError("invalid value for "+key, err)
		slog.Warn(appErr.Error(), "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}
