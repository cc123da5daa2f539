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

	completeBookingHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/complete_booking"
	createBookingHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/get_booking"
	getStudentBookingsHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/get_student_bookings"
	getTutorAvailabilityHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/get_tutor_availability"
	getTutorBookingsHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/get_tutor_bookings"
	rateBookingHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/rate_booking"
	runLifecycleSweepHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/run_lifecycle_sweep"
	transitionBookingHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/transition_booking"
	updateTutorAvailabilityHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/update_tutor_availability"
	verifyCompletionHandler "github.com/m04kA/TMS-BookingService/internal/api/handlers/verify_completion"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/config"
	availabilityRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/infra/migrator"
	notifyServiceClient "github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	paymentServiceClient "github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
	"github.com/m04kA/TMS-BookingService/internal/scheduler"
	availabilityService "github.com/m04kA/TMS-BookingService/internal/service/availability"
	bookingsService "github.com/m04kA/TMS-BookingService/internal/service/bookings"
	completeBookingUC "github.com/m04kA/TMS-BookingService/internal/usecase/complete_booking"
	createBookingUC "github.com/m04kA/TMS-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/TMS-BookingService/internal/usecase/get_available_slots"
	runLifecycleSweepUC "github.com/m04kA/TMS-BookingService/internal/usecase/run_lifecycle_sweep"
	transitionBookingUC "github.com/m04kA/TMS-BookingService/internal/usecase/transition_booking"
	verifyCompletionUC "github.com/m04kA/TMS-BookingService/internal/usecase/verify_completion"
	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TMS-BookingService/pkg/logger"
	"github.com/m04kA/TMS-BookingService/pkg/metrics"
	"github.com/m04kA/TMS-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/TMS-BookingService/pkg/txmanager"
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

	log.Info("Starting TMS-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Применяем миграции
	mg, err := migrator.New(db, cfg.Database.MigrationsDir)
	if err != nil {
		log.Fatal("Failed to initialize migrator: %v", err)
	}
	if err := mg.Run(context.Background()); err != nil {
		log.Fatal("Failed to apply migrations: %v", err)
	}
	if version, err := mg.Version(context.Background()); err == nil {
		log.Info("Database migrations applied (version=%d)", version)
	}

	// Инициализируем интеграционных клиентов
	paymentClient := paymentServiceClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PaymentService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.PaymentService.URL, cfg.PaymentService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		availabilityRepository *availabilityRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	availabilitySvc := availabilityService.NewService(availabilityRepository, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		notifyClient,
		txMgr,
		log,
	)
	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		bookingRepository,
		paymentClient,
		notifyClient,
		log,
	)
	verifyCompletionUseCase := verifyCompletionUC.NewUseCase(
		bookingRepository,
		paymentClient,
		notifyClient,
		log,
	)
	completeBookingUseCase := completeBookingUC.NewUseCase(
		bookingRepository,
		paymentClient,
		notifyClient,
		log,
	)
	runLifecycleSweepUseCase := runLifecycleSweepUC.NewUseCase(
		bookingRepository,
		paymentClient,
		notifyClient,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(transitionBookingUseCase, log)
	verifyCompletion := verifyCompletionHandler.NewHandler(verifyCompletionUseCase, log)
	completeBooking := completeBookingHandler.NewHandler(completeBookingUseCase, log)
	rateBooking := rateBookingHandler.NewHandler(bookingSvc, log)
	getStudentBookings := getStudentBookingsHandler.NewHandler(bookingSvc, log)
	getTutorBookings := getTutorBookingsHandler.NewHandler(bookingSvc, log)
	getTutorAvailability := getTutorAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateTutorAvailability := updateTutorAvailabilityHandler.NewHandler(availabilitySvc, log)
	runLifecycleSweep := runLifecycleSweepHandler.NewHandler(runLifecycleSweepUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты репетитора на дату
	api.HandleFunc("/tutors/{tutorId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание репетитора
	api.HandleFunc("/tutors/{tutorId}/availability",
		getTutorAvailability.Handle).Methods(http.MethodGet)

	// Внутренний хук запуска sweep для внешнего планировщика
	api.HandleFunc("/lifecycle/sweep", runLifecycleSweep.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Переход жизненного цикла (confirm, cancel, start, dispute, restore)
	protected.HandleFunc("/bookings/{bookingId}/transition", transitionBooking.Handle).Methods(http.MethodPost)

	// Подтверждение завершения кодом студента
	protected.HandleFunc("/bookings/{bookingId}/verify-completion", verifyCompletion.Handle).Methods(http.MethodPost)

	// Ручное завершение репетитором
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)

	// Оценка завершенного занятия
	protected.HandleFunc("/bookings/{bookingId}/rating", rateBooking.Handle).Methods(http.MethodPatch)

	// История бронирований студента
	protected.HandleFunc("/users/{userId}/bookings", getStudentBookings.Handle).Methods(http.MethodGet)

	// --- Кабинет репетитора ---
	// Список бронирований репетитора
	protected.HandleFunc("/tutors/{tutorId}/bookings", getTutorBookings.Handle).Methods(http.MethodGet)

	// Обновление расписания
	protected.HandleFunc("/tutors/{tutorId}/availability", updateTutorAvailability.Handle).Methods(http.MethodPut)

	// Запускаем фоновый sweep (если включен)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	var sweepScheduler *scheduler.Scheduler
	if cfg.Sweep.Enabled {
		sweepScheduler = scheduler.New(
			runLifecycleSweepUseCase,
			time.Duration(cfg.Sweep.IntervalSeconds)*time.Second,
			metricsCollector,
			log,
		)
		sweepScheduler.Start(schedulerCtx)
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

	// Останавливаем фоновый sweep
	if sweepScheduler != nil {
		sweepScheduler.Stop()
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
