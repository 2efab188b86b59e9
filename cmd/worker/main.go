// Worker assíncrono que consome eventos de entrada da fila e os registra no sorteio ativo.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/lucky-draw/internal/app/luckydraw"
	"github.com/marcelojr/lucky-draw/internal/app/worker"
	"github.com/marcelojr/lucky-draw/internal/platform/antifraude"
	"github.com/marcelojr/lucky-draw/internal/platform/clock"
	"github.com/marcelojr/lucky-draw/internal/platform/config"
	"github.com/marcelojr/lucky-draw/internal/platform/health"
	"github.com/marcelojr/lucky-draw/internal/platform/logger"
	"github.com/marcelojr/lucky-draw/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/lucky-draw/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/lucky-draw/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(cfg.SlogLevel())

	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN(), postgresstorage.Pool{
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	// Eventos do pipeline de upload não passam pelo throttle de convidados.
	servico := luckydraw.NewService(luckydraw.Dependencies{
		Configs:          postgresstorage.NewConfigRepository(db),
		Entries:          postgresstorage.NewEntryRepository(db),
		Winners:          postgresstorage.NewWinnerRepository(db),
		Contador:         redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix),
		Guard:            antifraude.NewNoop(),
		Clock:            clock.NewSystemClock(),
		Logger:           logger.Component("luckydraw"),
		PhotoURLTemplate: cfg.PhotoURLTemplate,
	})
	processor := worker.NewEntryProcessor(servico, fila, logger.Component("worker"))

	logger.Info("worker iniciado, aguardando entradas")
	err = fila.ConsumirEntradas(ctx, processor.Process)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}
