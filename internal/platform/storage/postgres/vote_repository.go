package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// VoteRepository mantém o livro de votos e o contador das submissões em sincronia.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast grava o voto e soma um ao alvo na mesma transação.
// Devolve domain.ErrAlreadyExists se o votante já votou no dia e domain.ErrNotFound se o alvo sumiu.
func (r *VoteRepository) Cast(ctx context.Context, vote domain.VoteRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return fmt.Errorf("gorm votos: inserir: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyExists
		}

		upd := tx.Model(&domain.Submission{}).
			Where("id = ?", vote.TargetSubmissionID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
		if upd.Error != nil {
			return fmt.Errorf("gorm votos: incrementar contador: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			// Rollback desfaz o registro do voto.
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *VoteRepository) FindByID(ctx context.Context, id domain.VoteID) (domain.VoteRecord, error) {
	var v domain.VoteRecord
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.VoteRecord{}, domain.ErrNotFound
		}
		return domain.VoteRecord{}, fmt.Errorf("gorm votos: buscar: %w", err)
	}
	return v, nil
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
