package doodle

import (
	"github.com/marcelojr/daily-doodle/internal/domain"
	"github.com/marcelojr/daily-doodle/internal/platform/ids"
)

// SubmissionIDFor é a chave de unicidade de (usuário, dia).
func SubmissionIDFor(userID domain.UserID, day domain.Day) domain.SubmissionID {
	return domain.SubmissionID(ids.Deterministic("submission", string(userID), string(day)))
}

// VoteIDFor segue o formato "<votante>_<dia>"; um votante tem no máximo um voto por dia.
func VoteIDFor(voterID domain.UserID, day domain.Day) domain.VoteID {
	return domain.VoteID(string(voterID) + "_" + string(day))
}
