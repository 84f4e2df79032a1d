package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&u)
	if res.Error != nil {
		return fmt.Errorf("gorm usuarios: inserir: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("gorm usuarios: buscar: %w", err)
	}
	return u, nil
}

func (r *UserRepository) MarkTutorialSeen(ctx context.Context, id domain.UserID) error {
	return r.setFlag(ctx, id, "has_seen_tutorial")
}

func (r *UserRepository) MarkVerified(ctx context.Context, id domain.UserID) error {
	return r.setFlag(ctx, id, "is_verified")
}

func (r *UserRepository) setFlag(ctx context.Context, id domain.UserID, column string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn(column, true)
	if res.Error != nil {
		return fmt.Errorf("gorm usuarios: atualizar %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Erase remove numa transação tudo que pertence ao usuário e, por fim, o próprio perfil.
// Contadores de votos de outras submissões não são revertidos.
func (r *UserRepository) Erase(ctx context.Context, id domain.UserID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			nome  string
			model any
			where string
		}{
			{"submissoes", &domain.Submission{}, "user_id = ?"},
			{"votos", &domain.VoteRecord{}, "voter_id = ?"},
			{"vencedores", &domain.WinnerRecord{}, "user_id = ?"},
			{"denuncias", &domain.Flag{}, "flagged_by = ?"},
			{"perfil", &domain.User{}, "id = ?"},
		}
		for _, s := range steps {
			if err := tx.Where(s.where, id).Delete(s.model).Error; err != nil {
				return fmt.Errorf("gorm usuarios: apagar %s: %w", s.nome, err)
			}
		}
		return nil
	})
}

var _ domain.UserRepository = (*UserRepository)(nil)
