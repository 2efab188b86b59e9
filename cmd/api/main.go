// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/lucky-draw/internal/app/httpapi"
	"github.com/marcelojr/lucky-draw/internal/app/luckydraw"
	"github.com/marcelojr/lucky-draw/internal/domain"
	"github.com/marcelojr/lucky-draw/internal/platform/antifraude"
	"github.com/marcelojr/lucky-draw/internal/platform/clock"
	"github.com/marcelojr/lucky-draw/internal/platform/config"
	"github.com/marcelojr/lucky-draw/internal/platform/health"
	"github.com/marcelojr/lucky-draw/internal/platform/ids"
	"github.com/marcelojr/lucky-draw/internal/platform/logger"
	"github.com/marcelojr/lucky-draw/internal/platform/migrations"
	"github.com/marcelojr/lucky-draw/internal/platform/random"
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

	// Redis guarda contadores, throttle e o canal de eventos do sorteio.
	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	var guard domain.AdmissionGuard = antifraude.NewNoop()
	if cfg.AdmissionThrottleEnabled {
		guard = antifraude.NewRedisRateLimiter(redisClient, cfg.AdmissionThrottleMax, cfg.AdmissionThrottleWindow, cfg.AdmissionThrottlePrefix)
	}

	servico := luckydraw.NewService(luckydraw.Dependencies{
		Configs:          postgresstorage.NewConfigRepository(db),
		Entries:          postgresstorage.NewEntryRepository(db),
		Winners:          postgresstorage.NewWinnerRepository(db),
		Contador:         redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix),
		Publisher:        redisstorage.NewPublisher(redisClient, cfg.EventosPrefix),
		Guard:            guard,
		Clock:            clock.NewSystemClock(),
		IDs:              ids.NewGenerator(),
		Seeds:            random.Crypto(),
		Logger:           logger.Component("luckydraw"),
		PhotoURLTemplate: cfg.PhotoURLTemplate,
	})

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(servico, logger.Component("httpapi"))
	api.Register(mux)
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
