package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

type FlagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// Create ignora reentregas da mesma denúncia (mesmo ID).
func (r *FlagRepository) Create(ctx context.Context, f domain.Flag) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&f).Error; err != nil {
		return fmt.Errorf("gorm denuncias: inserir: %w", err)
	}
	return nil
}

var _ domain.FlagRepository = (*FlagRepository)(nil)
