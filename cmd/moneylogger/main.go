package main

import (
	"encoding/json"
	stdlog "log"
	"log/slog"
	"net/http"
	"time"

	"github.com/moneylogger/moneylogger/internal/auth"
	"github.com/moneylogger/moneylogger/internal/config"
	database "github.com/moneylogger/moneylogger/internal/db"
	"github.com/moneylogger/moneylogger/internal/expense/application"
	"github.com/moneylogger/moneylogger/internal/expense/infrastructure"
	"github.com/moneylogger/moneylogger/internal/expense/interfaces"
	"github.com/moneylogger/moneylogger/internal/log"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request completed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	authService        auth.Service
	transactionHandler *interfaces.TransactionHandler
	categoryHandler    *interfaces.CategoryHandler
	dbService          *database.DBService
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	transactionHandler *interfaces.TransactionHandler,
	categoryHandler *interfaces.CategoryHandler,
	dbService *database.DBService,
) *Server {
	return &Server{
		router:             http.NewServeMux(),
		authHandler:        authHandler,
		authService:        authService,
		transactionHandler: transactionHandler,
		categoryHandler:    categoryHandler,
		dbService:          dbService,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.dbService.Health())
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()
	protect := s.authService.JWTAccessTokenMiddleware()
	refresh := s.authService.JWTRefreshTokenMiddleware()

	// Public routes
	router.Handle("POST /api/register", http.HandlerFunc(s.authHandler.HandleRegister))
	router.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	router.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	router.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	router.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Refresh token route, guarded by the refresh-token cookie
	router.Handle("PUT /api/refresh/token", refresh(http.HandlerFunc(s.authHandler.HandleRefreshToken)))

	// TRANSACTIONS API
	router.Handle("POST /api/transactions", protect(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	router.Handle("GET /api/transactions", protect(http.HandlerFunc(s.transactionHandler.GetTransactions)))
	router.Handle("GET /api/transactions/count", protect(http.HandlerFunc(s.transactionHandler.CountTransactions)))
	router.Handle("GET /api/transactions/totalAmount", protect(http.HandlerFunc(s.transactionHandler.GetTotalAmount)))
	router.Handle("GET /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.GetTransaction)))
	router.Handle("PUT /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	router.Handle("PATCH /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.PartialUpdateTransaction)))
	router.Handle("DELETE /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))

	// CATEGORIES API
	router.Handle("POST /api/categories", protect(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	router.Handle("GET /api/categories", protect(http.HandlerFunc(s.categoryHandler.GetCategories)))
	router.Handle("GET /api/categories/count", protect(http.HandlerFunc(s.categoryHandler.CountCategories)))
	router.Handle("GET /api/categories/{id}", protect(http.HandlerFunc(s.categoryHandler.GetCategory)))
	router.Handle("PUT /api/categories/{id}", protect(http.HandlerFunc(s.categoryHandler.UpdateCategory)))
	router.Handle("PATCH /api/categories/{id}", protect(http.HandlerFunc(s.categoryHandler.PartialUpdateCategory)))
	router.Handle("DELETE /api/categories/{id}", protect(http.HandlerFunc(s.categoryHandler.DeleteCategory)))

	router.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Missing configuration, update to start server: %v", err)
	}

	logger := log.New(slog.LevelInfo)

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			stdlog.Fatalf("Could not apply migrations: %v", err)
		}
	}

	dbService, err := database.NewDBService(cfg.DatabaseURL)
	if err != nil {
		stdlog.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	authRepo := auth.NewUserRepository(dbService.DB)
	authService := auth.NewAuthService(authRepo, jwtManager, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)
	authHandler := auth.NewHandler(authService)

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)

	categoryService := application.NewCategoryService(categoryRepo, logger)
	transactionService := application.NewTransactionService(transactionRepo, categoryRepo, logger)

	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, respondJSON, respondError)

	server := NewServer(authHandler, authService, transactionHandler, categoryHandler, dbService)
	server.RegisterRoutes()

	handler := loggingMiddleware(logger.WithComponent(log.ComponentHTTP), server.router)
	logger.Info("server starting", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		stdlog.Fatalf("Server failed to start: %v", err)
	}
}
