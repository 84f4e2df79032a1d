// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/daily-doodle/internal/app/doodle"
	"github.com/marcelojr/daily-doodle/internal/app/httpapi"
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/antifraude"
	"github.com/marcelojr/daily-doodle/internal/platform/clock"
	"github.com/marcelojr/daily-doodle/internal/platform/config"
	"github.com/marcelojr/daily-doodle/internal/platform/health"
	"github.com/marcelojr/daily-doodle/internal/platform/identity"
	"github.com/marcelojr/daily-doodle/internal/platform/ids"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
	"github.com/marcelojr/daily-doodle/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/daily-doodle/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/daily-doodle/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	calendar, err := cfg.Calendar()
	if err != nil {
		logger.Fatal("fuso horario invalido", "err", err)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET vazio; todas as rotas autenticadas vao responder 401")
	}

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.Open(ctx, cfg.PostgresOptions())
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

	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow(), cfg.RateLimitKeyPrefix)
	}

	servico := doodle.NewService(
		doodle.Repositories{
			Submissions: postgresstorage.NewSubmissionRepository(db),
			Votes:       postgresstorage.NewVoteRepository(db),
			Users:       postgresstorage.NewUserRepository(db),
			Themes:      postgresstorage.NewThemeRepository(db),
		},
		redisstorage.NewFlagQueue(redisClient, cfg.FlagQueueKey),
		antifraudeSvc,
		clock.NewSystemClock(),
		doodle.Options{
			Calendar: calendar,
			Schedule: cfg.Schedule,
			IDs:      ids.NewGenerator(),
			Logger:   logger.L(),
		},
	)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(servico, identity.NewVerifier(cfg.JWTSecret), cfg.AdminToken, logger.L())
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

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "tz", calendar.Location().String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
