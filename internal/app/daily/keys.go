package daily

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/ids"
)

func RoomIDFor(index int) domain.RoomID {
	return domain.RoomID(fmt.Sprintf("room-%d", index))
}

// RoomIndex é o inverso de RoomIDFor; ids fora do formato "room-N" devolvem false.
func RoomIndex(room domain.RoomID) (int, bool) {
	raw, ok := strings.CutPrefix(string(room), "room-")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || RoomIDFor(idx) != room {
		return 0, false
	}
	return idx, true
}

// WinnerIDFor torna o registro de vencedor único por submissão, o que deixa a seleção reexecutável.
func WinnerIDFor(submissionID domain.SubmissionID) domain.WinnerID {
	return domain.WinnerID(ids.Deterministic("winner", string(submissionID)))
}

func LockKey(job string, day domain.Day) string {
	return fmt.Sprintf("%s:%s", job, day)
}
