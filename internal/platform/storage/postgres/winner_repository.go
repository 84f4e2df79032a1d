package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

type WinnerRepository struct {
	db *gorm.DB
}

func NewWinnerRepository(db *gorm.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

// Award cria o vencedor e soma a vitória do usuário só quando o registro é novo.
// Em reexecuções devolve o registro já gravado e created=false.
func (r *WinnerRepository) Award(ctx context.Context, w domain.WinnerRecord) (domain.WinnerRecord, bool, error) {
	stored := w
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&w)
		if res.Error != nil {
			return fmt.Errorf("gorm vencedores: inserir: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if err := tx.Where("submission_id = ?", w.SubmissionID).First(&stored).Error; err != nil {
				return fmt.Errorf("gorm vencedores: buscar existente: %w", err)
			}
			return nil
		}

		// Usuário sem perfil não impede o registro do vencedor.
		if err := tx.Model(&domain.User{}).
			Where("id = ?", w.UserID).
			UpdateColumn("win_count", gorm.Expr("win_count + ?", 1)).Error; err != nil {
			return fmt.Errorf("gorm vencedores: incrementar vitorias: %w", err)
		}
		created = true
		stored = w
		return nil
	})
	if err != nil {
		return domain.WinnerRecord{}, false, err
	}
	return stored, created, nil
}

var _ domain.WinnerRepository = (*WinnerRepository)(nil)
