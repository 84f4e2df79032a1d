// Worker: agenda os jobs diários (tema, salas, vencedores), consome denúncias da fila e expõe métricas.
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
	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/daily-doodle/internal/app/daily"
	"github.com/marcelojr/daily-doodle/internal/app/worker"
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/clock"
	"github.com/marcelojr/daily-doodle/internal/platform/config"
	"github.com/marcelojr/daily-doodle/internal/platform/health"
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
		// Evitamos divergência de schema rodando a mesma migração condicional da API.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	clockSystem := clock.NewSystemClock()
	submissions := postgresstorage.NewSubmissionRepository(db)
	runner := daily.NewRunner(
		daily.NewRoomPartitioner(submissions, cfg.MaxRoomSize, logger.L()),
		daily.NewWinnerSelector(submissions, postgresstorage.NewWinnerRepository(db), clockSystem, logger.L()),
		daily.NewThemeRotator(postgresstorage.NewThemeRepository(db), clockSystem, logger.L()),
		redisstorage.NewJobLock(redisClient, cfg.JobLockPrefix),
		cfg.JobLockTTL(),
		logger.L(),
	)
	scheduler := daily.NewScheduler(runner, cfg.Schedule, calendar, clockSystem, logger.L())
	if err := scheduler.RegisterJobs(); err != nil {
		logger.Fatal("falha ao agendar jobs", "err", err)
	}

	fila := redisstorage.NewFlagQueue(redisClient, cfg.FlagQueueKey)
	processor := worker.NewFlagProcessor(postgresstorage.NewFlagRepository(db), submissions, clockSystem, logger.L())
	checker := health.NewChecker(sqlDB, redisClient)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		// Espera os jobs em andamento terminarem antes de liberar as conexões.
		<-scheduler.Stop().Done()
		return nil
	})

	g.Go(func() error {
		logger.Info("worker iniciado, aguardando denuncias")
		err := fila.ConsumeFlags(gctx, func(ctx context.Context, flag domain.Flag) error {
			if err := processor.Process(ctx, flag); err != nil {
				logger.Error("erro ao processar denuncia", "flag", flag.ID, "err", err)
			}
			return nil
		})
		// A fila de denúncias não derruba o agendador dos jobs diários.
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("consumo de denuncias encerrado", "err", err)
		}
		return nil
	})

	if cfg.WorkerMetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		mux.HandleFunc("GET /readyz", checker.ReadyHandler())
		srv := &http.Server{Addr: cfg.WorkerMetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("worker finalizado com erro", "err", err)
	}
	logger.Info("worker finalizado")
}
