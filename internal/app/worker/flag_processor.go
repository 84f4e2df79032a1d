// Pacote worker contém o processamento assíncrono das denúncias vindas da fila Redis.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
	"github.com/marcelojr/daily-doodle/internal/platform/metrics"
)

// FlagProcessor grava a denúncia e marca o desenho denunciado.
type FlagProcessor struct {
	flags       domain.FlagRepository
	submissions domain.SubmissionRepository
	clock       domain.Clock
	log         *slog.Logger
}

func NewFlagProcessor(flags domain.FlagRepository, submissions domain.SubmissionRepository, clock domain.Clock, log *slog.Logger) *FlagProcessor {
	if log == nil {
		log = logger.L()
	}
	return &FlagProcessor{
		flags:       flags,
		submissions: submissions,
		clock:       clock,
		log:         log,
	}
}

func (p *FlagProcessor) Process(ctx context.Context, flag domain.Flag) error {
	// Denúncia sem carimbo recebe o horário de chegada no worker.
	if flag.CriadoEm.IsZero() {
		flag.CriadoEm = p.clock.Agora()
	}

	if err := p.flags.Create(ctx, flag); err != nil {
		return fmt.Errorf("worker: registrar denuncia %s: %w", flag.ID, err)
	}

	if err := p.submissions.MarkFlagged(ctx, flag.DrawingID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("worker: marcar desenho %s: %w", flag.DrawingID, err)
		}
		// Desenho já apagado: a denúncia fica registrada mesmo assim.
		p.log.WarnContext(ctx, "denuncia para desenho inexistente", "flag_id", flag.ID, "drawing_id", flag.DrawingID)
	}

	metrics.IncFlagProcessed()
	return nil
}
