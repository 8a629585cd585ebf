// Gantry Server — CI сервер.
//
// Server:
//   - Загружает workflows из каталога деклараций
//   - Принимает триггеры через HTTP API (dispatch, pull_request)
//   - Запускает workflows по расписанию (cron)
//   - Выполняет jobs в локальных окружениях
//   - Персистит runs и результаты в Postgres
//   - Публикует события завершения в RabbitMQ
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Gantry/internal/api"
	"github.com/shaiso/Gantry/internal/engine"
	"github.com/shaiso/Gantry/internal/executor"
	"github.com/shaiso/Gantry/internal/localenv"
	"github.com/shaiso/Gantry/internal/mq"
	"github.com/shaiso/Gantry/internal/orchestrator"
	"github.com/shaiso/Gantry/internal/repo"
	"github.com/shaiso/Gantry/internal/scheduler"
	"github.com/shaiso/Gantry/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting gantry-server")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Workflows
	workflowsDir := os.Getenv("WORKFLOWS_DIR")
	if workflowsDir == "" {
		workflowsDir = "workflows"
	}
	workflows, err := engine.LoadDir(workflowsDir)
	if err != nil {
		logger.Error("failed to load workflows", "dir", workflowsDir, "error", err)
		os.Exit(1)
	}
	logger.Info("workflows loaded", "dir", workflowsDir, "count", len(workflows))

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	runRepo := repo.NewRunRepo(pool)

	// RabbitMQ
	var publisher orchestrator.EventPublisher
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, completion events disabled", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Метрики
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Исполнение jobs в локальных окружениях
	env, err := localenv.NewEnvironment(os.Getenv("ENV_DIR"))
	if err != nil {
		logger.Error("failed to init environment provider", "error", err)
		os.Exit(1)
	}

	exec := executor.New(executor.Config{
		Environment: env,
		Installer:   localenv.NewInstaller(nil),
		Runner:      localenv.NewTestRunner(nil),
		LogDir:      os.Getenv("LOG_DIR"),
		Logger:      logger,
	})

	orch := orchestrator.New(orchestrator.Config{
		Runner:  exec,
		Metrics: metrics,
		Logger:  logger,
	})

	// Создаём service
	service := orchestrator.NewService(orchestrator.ServiceConfig{
		Workflows:    workflows,
		Orchestrator: orch,
		Store:        runRepo,
		Publisher:    publisher,
		Logger:       logger,
	})

	if err := service.Start(ctx); err != nil {
		logger.Error("failed to start service", "error", err)
		os.Exit(1)
	}

	// Scheduler: тикаем раз в секунду для cron-триггеров
	sched := scheduler.New(scheduler.Config{
		Workflows: service.Workflows(),
		Submitter: service,
		Logger:    logger,
	})
	if sched.Scheduled() > 0 {
		go func() {
			tk := time.NewTicker(time.Second)
			defer tk.Stop()
			for {
				select {
				case t := <-tk.C:
					sched.Tick(ctx, t)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// HTTP API
	handler := api.NewHandler(api.Config{
		Service: service,
		RunRepo: runRepo,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if v := os.Getenv("GANTRY_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем service (активные runs доводятся до CANCELLED)
	service.Stop()
	logger.Info("gantry-server stopped")
}
