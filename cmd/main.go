package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getActiveReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_active_reservation"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_available_slots"
	getBusinessReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_business_reservations"
	getBusinessScheduleHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_business_schedule"
	getClientReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_client_reservations"
	getLastReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_last_reservation"
	getLatestBusinessReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_latest_business_reservation"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	rescheduleReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/reschedule_reservation"
	updateBusinessScheduleHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_business_schedule"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/infra/outbox"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/migrations"
	outboxRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/outbox"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	userServiceClient "github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	schedulesService "github.com/m04kA/SMC-ReservationService/internal/service/schedules"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	rescheduleReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/clock"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Метрики: nil-коллектор безопасен, вызовы просто игнорируются
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(context.Background(), wrappedDB); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database schema is up to date")
	}

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis is unavailable, catalog cache disabled: %v", err)
		} else {
			catalogClient.UseRedisCache(redisClient, cfg.Redis.CacheTTL())
			log.Info("Catalog cache enabled (redis=%s, ttl=%s)", cfg.Redis.Address, cfg.Redis.CacheTTL())
		}
	}
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, UserService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.UserService.URL, cfg.UserService.Timeout)

	// Репозитории и менеджер транзакций
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	timeProvider := clock.NewReal()

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		outboxRepository,
		catalogClient,
		txMgr,
		metricsCollector,
		timeProvider,
		log,
	)
	scheduleSvc := schedulesService.NewService(
		scheduleRepository,
		catalogClient,
		timeProvider,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		outboxRepository,
		catalogClient,
		userClient,
		txMgr,
		metricsCollector,
		timeProvider,
		log,
	)

	rescheduleReservationUseCase := rescheduleReservationUC.NewUseCase(
		reservationRepository,
		outboxRepository,
		catalogClient,
		createReservationUseCase,
		txMgr,
		metricsCollector,
		timeProvider,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		catalogClient,
		metricsCollector,
		timeProvider,
		log,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(rescheduleReservationUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	getClientReservations := getClientReservationsHandler.NewHandler(reservationSvc, log)
	getActiveReservation := getActiveReservationHandler.NewHandler(reservationSvc, log)
	getLastReservation := getLastReservationHandler.NewHandler(reservationSvc, log)
	getLatestBusinessReservation := getLatestBusinessReservationHandler.NewHandler(reservationSvc, log)
	getBusinessReservations := getBusinessReservationsHandler.NewHandler(reservationSvc, log)
	getBusinessSchedule := getBusinessScheduleHandler.NewHandler(scheduleSvc, log)
	updateBusinessSchedule := updateBusinessScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты для услуги на дату
	api.HandleFunc("/businesses/{businessId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Недельное расписание бизнеса
	api.HandleFunc("/businesses/{businessId}/schedule",
		getBusinessSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		protected.Use(limiter.Middleware)
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/reschedule", rescheduleReservation.Handle).Methods(http.MethodPatch)

	// --- Клиент ---
	protected.HandleFunc("/clients/me/reservations", getClientReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/clients/me/reservations/active", getActiveReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/clients/me/reservations/last", getLastReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/clients/me/businesses/{businessId}/reservations/latest",
		getLatestBusinessReservation.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для владельцев) ---
	protected.HandleFunc("/businesses/{businessId}/reservations", getBusinessReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/schedule", updateBusinessSchedule.Handle).Methods(http.MethodPut)

	// Relay событий outbox -> Kafka
	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	if cfg.Outbox.Enabled {
		writer := outbox.NewKafkaWriter(cfg.Kafka.Brokers)
		defer writer.Close()

		relay := outbox.NewRelay(outboxRepository, txMgr, writer, metricsCollector, timeProvider, log, outbox.Config{
			PollEvery:   cfg.Outbox.PollEvery(),
			BatchSize:   cfg.Outbox.BatchSize,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		})
		go func() {
			defer close(relayDone)
			relay.Run(relayCtx)
		}()
	} else {
		close(relayDone)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopRelay()
	<-relayDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
