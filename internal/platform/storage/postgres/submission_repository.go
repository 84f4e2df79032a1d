package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

// SubmissionRepository guarda os desenhos diários; a unicidade por (usuário, dia) fica a cargo do banco.
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateIfAbsent devolve false quando já existe submissão com o mesmo ID ou para o mesmo (usuário, dia).
func (r *SubmissionRepository) CreateIfAbsent(ctx context.Context, s domain.Submission) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&s)
	if res.Error != nil {
		return false, fmt.Errorf("gorm submissions: inserir: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id domain.SubmissionID) (domain.Submission, error) {
	var s domain.Submission
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Submission{}, domain.ErrNotFound
		}
		return domain.Submission{}, fmt.Errorf("gorm submissions: buscar: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepository) FindByUserAndDay(ctx context.Context, userID domain.UserID, day domain.Day) (domain.Submission, error) {
	var s domain.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Submission{}, domain.ErrNotFound
		}
		return domain.Submission{}, fmt.Errorf("gorm submissions: buscar por usuario: %w", err)
	}
	return s, nil
}

// ListByDay devolve as submissões do dia em ordem estável (criação, id), base do particionamento.
func (r *SubmissionRepository) ListByDay(ctx context.Context, day domain.Day) ([]domain.Submission, error) {
	var subs []domain.Submission
	if err := r.db.WithContext(ctx).
		Where("day = ?", day).
		Order("created_at_millis ASC").
		Order("id ASC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("gorm submissions: listar dia: %w", err)
	}
	return subs, nil
}

func (r *SubmissionRepository) ListRoom(ctx context.Context, day domain.Day, room domain.RoomID, exclude domain.UserID) ([]domain.Submission, error) {
	var subs []domain.Submission
	if err := r.db.WithContext(ctx).
		Where("day = ? AND room_id = ? AND user_id <> ?", day, room, exclude).
		Order("vote_count DESC").
		Order("user_id DESC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("gorm submissions: listar sala: %w", err)
	}
	return subs, nil
}

// AssignRoom grava a sala apenas nas submissões ainda sem sala; reexecuções não alteram nada.
func (r *SubmissionRepository) AssignRoom(ctx context.Context, room domain.RoomID, ids []domain.SubmissionID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id IN ?", ids).
		Where("(room_id IS NULL OR room_id = '')").
		UpdateColumn("room_id", room)
	if res.Error != nil {
		return 0, fmt.Errorf("gorm submissions: atribuir sala %s: %w", room, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SubmissionRepository) MarkFlagged(ctx context.Context, id domain.SubmissionID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ?", id).
		UpdateColumn("flagged", true)
	if res.Error != nil {
		return fmt.Errorf("gorm submissions: marcar denuncia: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.SubmissionRepository = (*SubmissionRepository)(nil)
