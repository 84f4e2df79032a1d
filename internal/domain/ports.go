package domain

import (
	"context"
	"time"
)

// SubmissionRepository guarda os desenhos diários. CreateIfAbsent e AssignRoom são escritas condicionais atômicas.
type SubmissionRepository interface {
	CreateIfAbsent(ctx context.Context, s Submission) (bool, error)
	FindByID(ctx context.Context, id SubmissionID) (Submission, error)
	FindByUserAndDay(ctx context.Context, userID UserID, day Day) (Submission, error)
	ListByDay(ctx context.Context, day Day) ([]Submission, error)
	ListRoom(ctx context.Context, day Day, room RoomID, exclude UserID) ([]Submission, error)
	AssignRoom(ctx context.Context, room RoomID, ids []SubmissionID) (int64, error)
	MarkFlagged(ctx context.Context, id SubmissionID) error
}

// VoteRepository grava o voto e incrementa o contador do alvo na mesma transação.
type VoteRepository interface {
	Cast(ctx context.Context, vote VoteRecord) error
	FindByID(ctx context.Context, id VoteID) (VoteRecord, error)
}

// WinnerRepository cria o registro de vencedor e soma a vitória do usuário uma única vez por submissão.
type WinnerRepository interface {
	Award(ctx context.Context, w WinnerRecord) (WinnerRecord, bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, id UserID) (User, error)
	MarkTutorialSeen(ctx context.Context, id UserID) error
	MarkVerified(ctx context.Context, id UserID) error
	Erase(ctx context.Context, id UserID) error
}

type ThemeRepository interface {
	Enqueue(ctx context.Context, themes []Theme) error
	FindOfDay(ctx context.Context, day Day) (ThemeOfDay, error)
	PromoteNext(ctx context.Context, day Day, at time.Time) (ThemeOfDay, bool, error)
}

type FlagRepository interface {
	Create(ctx context.Context, f Flag) error
}

type FlagQueue interface {
	PublishFlag(ctx context.Context, f Flag) error
	ConsumeFlags(ctx context.Context, handler func(context.Context, Flag) error) error
}

type Antifraude interface {
	Validar(ctx context.Context, userID UserID, acao string) error
}

// JobLock evita que duas execuções do mesmo job diário rodem ao mesmo tempo.
type JobLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type Clock interface {
	Agora() time.Time
}

// DoodleService expõe as operações por requisição consumidas pela API HTTP.
type DoodleService interface {
	Submit(ctx context.Context, userID UserID, image string) (Submission, error)
	RoomFeed(ctx context.Context, userID UserID, day Day) ([]Submission, error)
	CastVote(ctx context.Context, voterID UserID, target SubmissionID) error
	FlagDrawing(ctx context.Context, flaggedBy UserID, drawingID SubmissionID, image string) error
	Today() Day
	ThemeOfDay(ctx context.Context, day Day) (ThemeOfDay, error)
	EnqueueThemes(ctx context.Context, words []string) ([]Theme, error)
	CreateUser(ctx context.Context, u User) (User, error)
	MarkTutorialSeen(ctx context.Context, id UserID) error
	MarkVerified(ctx context.Context, id UserID, emailVerified bool) error
	DeleteAccount(ctx context.Context, id UserID) error
}
