package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/comissio/backend/src/config"
	"github.com/username/comissio/backend/src/database"
	"github.com/username/comissio/backend/src/handlers"
	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/services"
	"github.com/username/comissio/backend/src/storage"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Comissio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	store := storage.NewStore(database.DB)
	datasetService := services.NewDatasetService(store, reportCache)

	uploadHandler := handlers.NewUploadHandler(datasetService)
	batchHandler := handlers.NewBatchHandler(datasetService)
	reportHandler := handlers.NewReportHandler(datasetService)
	exportHandler := handlers.NewExportHandler(datasetService)

	logger.L.Info("Configuring routes...")
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(enableCORS)
	router.Use(rateLimitMiddleware)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Comissio backend is running"})
	})

	router.Route("/api", func(api chi.Router) {
		api.Post("/upload", uploadHandler.HandleUpload)

		api.Get("/batches", batchHandler.HandleListBatches)
		api.Get("/batches/records", batchHandler.HandleGetRecordsBySource)
		api.Get("/batches/{batchID}", batchHandler.HandleGetBatch)
		api.Get("/batches/{batchID}/records", batchHandler.HandleGetBatchRecords)

		api.Get("/reports/salesperson-totals", reportHandler.HandleSalespersonTotals)
		api.Get("/reports/consortium-totals", reportHandler.HandleConsortiumSalespersonTotals)
		api.Get("/reports/consortium", reportHandler.HandleConsortiumReport)
		api.Get("/reports/delinquency", reportHandler.HandleDelinquencySummary)
		api.Get("/reports/overdue-quotas", reportHandler.HandleOverdueQuotas)
		api.Get("/reports/sales-by-year", reportHandler.HandleSalesByYear)

		api.Get("/export/salesperson-totals.xlsx", exportHandler.HandleSalespersonTotalsXLSX)
		api.Get("/export/consortium-report.xlsx", exportHandler.HandleConsortiumReportXLSX)
		api.Get("/export/salesperson-totals.docx", exportHandler.HandleSalespersonTotalsDOCX)
		api.Get("/export/delinquency.docx", exportHandler.HandleDelinquencyDOCX)
		api.Get("/export/pdf-excerpt.docx", exportHandler.HandlePDFExcerptDOCX)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
