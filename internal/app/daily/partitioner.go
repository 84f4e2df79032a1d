// Pacote daily contém os jobs diários: rotação de tema, distribuição em salas e seleção de vencedores.
package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/logger"
)

// ErrInconsistentRooms indica sala com id fora do formato ou acima do tamanho máximo; a execução é abortada.
var ErrInconsistentRooms = errors.New("daily: salas do dia inconsistentes")

type RoomPartitioner struct {
	submissions domain.SubmissionRepository
	maxRoomSize int
	log         *slog.Logger
}

func NewRoomPartitioner(submissions domain.SubmissionRepository, maxRoomSize int, log *slog.Logger) *RoomPartitioner {
	if log == nil {
		log = logger.L()
	}
	return &RoomPartitioner{submissions: submissions, maxRoomSize: maxRoomSize, log: log}
}

// NumRooms devolve ceil(total / maxRoomSize).
func NumRooms(total, maxRoomSize int) int {
	if total <= 0 || maxRoomSize <= 0 {
		return 0
	}
	return (total + maxRoomSize - 1) / maxRoomSize
}

// AssignRooms distribui as submissões do dia em round-robin sobre a ordem (criação, id).
// Linhas que já têm sala não mudam. Numa reexecução, cada pendente vai para a sala do plano
// derivado do total atual; se ela estiver cheia, vai para a sala existente menos ocupada e,
// sem vaga em nenhuma, abre uma sala nova. Assim uma falha parcial seguida de apagamento de
// conta ainda termina com todas as submissões em alguma sala.
func (p *RoomPartitioner) AssignRooms(ctx context.Context, day domain.Day) (domain.RoomAssignment, error) {
	if p.maxRoomSize <= 0 {
		return domain.RoomAssignment{}, fmt.Errorf("daily: tamanho maximo de sala invalido: %d", p.maxRoomSize)
	}

	subs, err := p.submissions.ListByDay(ctx, day)
	if err != nil {
		return domain.RoomAssignment{}, fmt.Errorf("daily: listar submissoes de %s: %w", day, err)
	}

	numRooms := NumRooms(len(subs), p.maxRoomSize)
	if numRooms == 0 {
		p.log.InfoContext(ctx, "nenhuma submissao para distribuir", "day", day)
		return domain.RoomAssignment{}, nil
	}

	ocupacao := make(map[int]int)
	maiorSala := -1
	for _, s := range subs {
		if s.RoomID == "" {
			continue
		}
		idx, ok := RoomIndex(s.RoomID)
		if !ok {
			return domain.RoomAssignment{}, fmt.Errorf("%w: submissao %s na sala %q", ErrInconsistentRooms, s.ID, s.RoomID)
		}
		ocupacao[idx]++
		if ocupacao[idx] > p.maxRoomSize {
			return domain.RoomAssignment{}, fmt.Errorf("%w: sala %s acima de %d", ErrInconsistentRooms, s.RoomID, p.maxRoomSize)
		}
		maiorSala = max(maiorSala, idx)
	}
	for idx := range numRooms {
		if _, ok := ocupacao[idx]; !ok {
			ocupacao[idx] = 0
		}
		maiorSala = max(maiorSala, idx)
	}

	pendentes := make(map[int][]domain.SubmissionID)
	for i, s := range subs {
		if s.RoomID != "" {
			continue
		}
		idx := i % numRooms
		if ocupacao[idx] >= p.maxRoomSize {
			idx = salaMenosOcupada(ocupacao, p.maxRoomSize)
		}
		if idx < 0 {
			maiorSala++
			idx = maiorSala
		}
		ocupacao[idx]++
		pendentes[idx] = append(pendentes[idx], s.ID)
	}

	result := domain.RoomAssignment{RoomsCreated: len(ocupacao)}
	ordem := make([]int, 0, len(pendentes))
	for idx := range pendentes {
		ordem = append(ordem, idx)
	}
	sort.Ints(ordem)
	for _, idx := range ordem {
		room := RoomIDFor(idx)
		n, err := p.submissions.AssignRoom(ctx, room, pendentes[idx])
		if err != nil {
			return result, fmt.Errorf("daily: atribuir %s: %w", room, err)
		}
		result.SubmissionsAssigned += int(n)
	}

	p.log.InfoContext(ctx, "salas distribuidas",
		"day", day,
		"total", len(subs),
		"rooms", result.RoomsCreated,
		"assigned", result.SubmissionsAssigned,
	)
	return result, nil
}

// salaMenosOcupada devolve a sala com vaga e menor ocupação (empate pelo menor índice), ou -1.
func salaMenosOcupada(ocupacao map[int]int, maxRoomSize int) int {
	melhor := -1
	for idx, n := range ocupacao {
		if n >= maxRoomSize {
			continue
		}
		if melhor < 0 || n < ocupacao[melhor] || (n == ocupacao[melhor] && idx < melhor) {
			melhor = idx
		}
	}
	return melhor
}
