// jobctl reexecuta manualmente um job diário para um dia: jobctl -job assign-rooms -day 2024-05-01.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/marcelojr/daily-doodle/internal/app/daily"
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/clock"
	"github.com/marcelojr/daily-doodle/internal/platform/config"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
	"github.com/marcelojr/daily-doodle/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/daily-doodle/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/daily-doodle/internal/platform/storage/redis"
)

func main() {
	job := flag.String("job", "", "job a executar: "+strings.Join(daily.Jobs(), ", "))
	dayFlag := flag.String("day", "", "dia no formato YYYY-MM-DD (padrao: hoje no fuso configurado)")
	flag.Parse()

	if *job == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	clockSystem := clock.NewSystemClock()

	day := calendar.DayOf(clockSystem.Agora())
	if *dayFlag != "" {
		day, err = domain.ParseDay(*dayFlag)
		if err != nil {
			logger.Fatal("dia invalido", "err", err)
		}
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
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Sem Redis o job roda sem lock; as escritas continuam idempotentes.
	var lock domain.JobLock
	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Warn("redis indisponivel, executando sem lock", "err", err)
	} else {
		defer redisClient.Close()
		lock = redisstorage.NewJobLock(redisClient, cfg.JobLockPrefix)
	}

	submissions := postgresstorage.NewSubmissionRepository(db)
	runner := daily.NewRunner(
		daily.NewRoomPartitioner(submissions, cfg.MaxRoomSize, logger.L()),
		daily.NewWinnerSelector(submissions, postgresstorage.NewWinnerRepository(db), clockSystem, logger.L()),
		daily.NewThemeRotator(postgresstorage.NewThemeRepository(db), clockSystem, logger.L()),
		lock,
		cfg.JobLockTTL(),
		logger.L(),
	)

	if err := runner.Run(ctx, *job, day); err != nil {
		if errors.Is(err, daily.ErrJobLocked) {
			fmt.Fprintf(os.Stderr, "%s (%s): outra execucao em andamento\n", *job, day)
			os.Exit(3)
		}
		logger.Fatal("job falhou", "job", *job, "day", day, "err", err)
	}
	fmt.Printf("%s (%s): ok\n", *job, day)
}
