package doodle

import (
	"context"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// FlagDrawing apenas enfileira a denúncia; o worker persiste e marca o desenho.
func (s *Service) FlagDrawing(ctx context.Context, flaggedBy domain.UserID, drawingID domain.SubmissionID, image string) error {
	if flaggedBy == "" {
		return ErrUnauthenticated
	}
	if drawingID == "" {
		return missingField("drawing_id")
	}
	if image == "" {
		return missingField("image")
	}
	if err := s.validar(ctx, flaggedBy, acaoFlag); err != nil {
		return err
	}

	flag := domain.Flag{
		ID:        domain.FlagID(s.ids.New()),
		DrawingID: drawingID,
		Image:     image,
		FlaggedBy: flaggedBy,
		CriadoEm:  s.clock.Agora(),
	}
	if err := s.flags.PublishFlag(ctx, flag); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "denuncia enfileirada", "flag_id", flag.ID, "drawing_id", drawingID)
	return nil
}
