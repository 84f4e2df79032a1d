package doodle

import (
	"context"
	"errors"
	"strings"

	"github.com/marcelojr/daily-doodle/internal/domain"
)

func (s *Service) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, ErrUnauthenticated
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return domain.User{}, missingField("username")
	}

	u.WinCount = 0
	u.HasSeenTutorial = false
	u.CriadoEm = s.clock.Agora()

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) MarkTutorialSeen(ctx context.Context, id domain.UserID) error {
	if id == "" {
		return ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return userNotFound(err)
	}
	if u.HasSeenTutorial {
		return nil
	}
	return userNotFound(s.users.MarkTutorialSeen(ctx, id))
}

// MarkVerified copia para o perfil a verificação de e-mail informada pelo provedor de identidade.
func (s *Service) MarkVerified(ctx context.Context, id domain.UserID, emailVerified bool) error {
	if id == "" {
		return ErrUnauthenticated
	}
	if !emailVerified {
		return ErrEmailNotVerified
	}
	return userNotFound(s.users.MarkVerified(ctx, id))
}

// DeleteAccount apaga desenhos, votos emitidos, vitórias, denúncias e o perfil do usuário.
func (s *Service) DeleteAccount(ctx context.Context, id domain.UserID) error {
	if id == "" {
		return ErrUnauthenticated
	}
	if err := s.users.Erase(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "conta apagada", "user_id", id)
	return nil
}

func userNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
