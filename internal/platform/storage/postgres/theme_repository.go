package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// ThemeRepository guarda a fila FIFO de temas e o tema escolhido de cada dia.
type ThemeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

func (r *ThemeRepository) Enqueue(ctx context.Context, themes []domain.Theme) error {
	if len(themes) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&themes).Error; err != nil {
		return fmt.Errorf("gorm temas: enfileirar: %w", err)
	}
	return nil
}

func (r *ThemeRepository) FindOfDay(ctx context.Context, day domain.Day) (domain.ThemeOfDay, error) {
	var tod domain.ThemeOfDay
	if err := r.db.WithContext(ctx).First(&tod, "day = ?", day).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ThemeOfDay{}, domain.ErrNotFound
		}
		return domain.ThemeOfDay{}, fmt.Errorf("gorm temas: tema do dia: %w", err)
	}
	return tod, nil
}

// PromoteNext move o tema mais antigo da fila para o dia informado.
// Se o dia já tem tema, devolve o existente com created=false; fila vazia devolve domain.ErrNotFound.
func (r *ThemeRepository) PromoteNext(ctx context.Context, day domain.Day, at time.Time) (domain.ThemeOfDay, bool, error) {
	var result domain.ThemeOfDay
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&result, "day = ?", day).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("gorm temas: tema do dia: %w", err)
		}

		var next domain.Theme
		if err := tx.Order("queued_at ASC").Order("id ASC").First(&next).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("gorm temas: proximo da fila: %w", err)
		}

		tod := domain.ThemeOfDay{Day: day, ThemeID: next.ID, Word: next.Word, RotatedAt: at}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tod)
		if res.Error != nil {
			return fmt.Errorf("gorm temas: gravar tema do dia: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Outra rotação gravou o dia primeiro; o tema continua na fila.
			return tx.First(&result, "day = ?", day).Error
		}

		if err := tx.Delete(&domain.Theme{}, "id = ?", next.ID).Error; err != nil {
			return fmt.Errorf("gorm temas: remover da fila: %w", err)
		}
		result = tod
		created = true
		return nil
	})
	if err != nil {
		return domain.ThemeOfDay{}, false, err
	}
	return result, created, nil
}

var _ domain.ThemeRepository = (*ThemeRepository)(nil)
