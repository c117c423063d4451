package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/medreport-ai/internal/application"
	appcomparison "github.com/bryanwahyu/medreport-ai/internal/application/comparison"
	appreports "github.com/bryanwahyu/medreport-ai/internal/application/reports"
	"github.com/bryanwahyu/medreport-ai/internal/config"
	aidom "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	comparisondom "github.com/bryanwahyu/medreport-ai/internal/domain/comparison"
	patientsdom "github.com/bryanwahyu/medreport-ai/internal/domain/patients"
	reportsdom "github.com/bryanwahyu/medreport-ai/internal/domain/reports"
	openaicli "github.com/bryanwahyu/medreport-ai/internal/infra/ai/openai"
	"github.com/bryanwahyu/medreport-ai/internal/infra/cache"
	mysqlp "github.com/bryanwahyu/medreport-ai/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/medreport-ai/internal/infra/db/postgres"
	"github.com/bryanwahyu/medreport-ai/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/medreport-ai/internal/infra/storage"
	"github.com/bryanwahyu/medreport-ai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database per configured driver
	var (
		db             *sql.DB
		reportRepo     reportsdom.Repository
		patientRepo    patientsdom.Repository
		comparisonRepo comparisondom.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN(),
			cfg.Database.Pool.MaxOpen, cfg.Database.Pool.MaxIdle, cfg.ConnLifetime())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("mysql schema error: %v", err)
		}
		reportRepo = mysqlp.NewReportRepository(db)
		patientRepo = mysqlp.NewPatientRepository(db)
		comparisonRepo = mysqlp.NewComparisonRepository(db)
	default:
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN(),
			cfg.Database.Pool.MaxOpen, cfg.Database.Pool.MaxIdle, cfg.ConnLifetime())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		if err := postgresp.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
		reportRepo = postgresp.NewReportRepository(db)
		patientRepo = postgresp.NewPatientRepository(db)
		comparisonRepo = postgresp.NewComparisonRepository(db)
	}
	defer db.Close()

	// init narrative cache + periodic purge of expired entries
	analysisCache := cache.NewMemory(cfg.Cache.MaxEntries, cfg.CacheTTL())
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n := analysisCache.PurgeExpired(); n > 0 {
				log.Printf("purged %d expired cache entries", n)
			}
		}
	}()

	// init generation client
	aiClient := openaicli.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLMTimeout(),
	)

	// init minio (optional submission archive)
	var archive reportsdom.ArchiveStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init services
	reportsSvc := &appreports.Service{
		Reports:  reportRepo,
		Patients: patientRepo,
		AI:       aiClient,
		Cache:    analysisCache,
		Archive:  archive,
		Clock:    application.SystemClock{},
	}
	comparisonSvc := &appcomparison.Service{
		Reports:     reportRepo,
		Comparisons: comparisonRepo,
		AI:          aiClient,
		Clock:       application.SystemClock{},
	}

	// health checks
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"llm": middleware.CheckerFunc(func(ctx context.Context) error {
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("llm api key not configured")
			}
			return aiClient.Ping(ctx)
		}),
	}
	health := middleware.HealthHandler(checkers, func() aidom.CacheStats {
		return analysisCache.Stats()
	})

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	mux.Mount("/", httpserver.NewRouter(reportsSvc, comparisonSvc, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // generation can take most of the LLM timeout
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s (driver=%s)", addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORS.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORS.AllowedOrigins
}
