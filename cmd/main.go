package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"user-management-server/config"
	_ "user-management-server/docs"
	"user-management-server/internal/database"
	"user-management-server/internal/handler"
	"user-management-server/internal/metrics"
	"user-management-server/internal/repository"
	"user-management-server/internal/security"
	"user-management-server/internal/service"
)

// @title User-management-server
// @version 1.0
// @description REST API управления пользователями: регистрация, JWT-сессии, RBAC, административные операции

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := database.RunMigrations(cfg.DatabaseConfig.DSN); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	userRepo := repository.NewUserRepository(db)
	revocationRepo := repository.NewRevocationRepository(redisClient)

	loginWindow, err := time.ParseDuration(cfg.RateLimit.LoginWindow)
	if err != nil {
		log.Fatalf("Ошибка парсинга login_window: %v", err)
	}
	rateLimiter := repository.NewRateLimiter(redisClient, cfg.RateLimit.LoginAttempts, loginWindow)

	jwtService := security.NewJWTService(&cfg.JWT, revocationRepo)

	authService := service.NewAuthenticationService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	adminService := service.NewAdminService(userRepo)

	if err := service.EnsureAdmin(ctx, userRepo, &cfg.Admin); err != nil {
		log.Fatalf("Не удалось создать администратора: %v", err)
	}

	authHandler := handler.NewAuthenticationHandler(authService, collector)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)

	router.Use(collector.Middleware)
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	authenticate := security.Authenticate(jwtService, userRepo)

	setupAuthRoutes(router, authHandler, authenticate, rateLimiter)
	setupUserRoutes(router, userHandler, authenticate)
	setupAdminRoutes(router, adminHandler, authenticate)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, authenticate func(http.Handler) http.Handler, limiter security.Limiter) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.With(security.LoginRateLimit(limiter)).Post("/login", h.Login)
		r.Post("/token/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, authenticate func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Post("/change-password", h.ChangePassword)
	})
}

func setupAdminRoutes(r chi.Router, h *handler.AdminHandler, authenticate func(http.Handler) http.Handler) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(security.RequireAdmin)

		r.Get("/", h.ListUsers)

		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Post("/activate", h.Activate)
			r.Post("/deactivate", h.Deactivate)
		})
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
