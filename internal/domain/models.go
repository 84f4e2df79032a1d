package domain

import (
	"time"
)

type (
	UserID       string
	SubmissionID string
	RoomID       string
	VoteID       string
	WinnerID     string
	ThemeID      string
	FlagID       string
)

// Submission é o desenho de um usuário para um dia. RoomID vazio significa ainda sem sala.
type Submission struct {
	ID              SubmissionID `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	UserID          UserID       `gorm:"column:user_id;type:varchar(128);not null;uniqueIndex:idx_submissions_user_day,priority:1;index:idx_submissions_user" json:"user_id"`
	Day             Day          `gorm:"column:day;type:char(10);not null;uniqueIndex:idx_submissions_user_day,priority:2;index:idx_submissions_day_room,priority:1" json:"day"`
	Image           string       `gorm:"column:image;type:text;not null" json:"image"`
	CreatedAtMillis int64        `gorm:"column:created_at_millis;not null" json:"created_at_millis"`
	RoomID          RoomID       `gorm:"column:room_id;type:varchar(32);index:idx_submissions_day_room,priority:2" json:"room_id,omitempty"`
	VoteCount       int64        `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
	Flagged         bool         `gorm:"column:flagged;not null;default:false" json:"flagged"`
}

// VoteRecord prova o voto diário de um usuário; o ID é derivado de (votante, dia).
type VoteRecord struct {
	ID                 VoteID       `gorm:"column:id;type:varchar(160);primaryKey" json:"id"`
	VoterID            UserID       `gorm:"column:voter_id;type:varchar(128);not null;index:idx_vote_records_voter" json:"voter_id"`
	TargetSubmissionID SubmissionID `gorm:"column:target_submission_id;type:varchar(64);not null;index:idx_vote_records_target" json:"target_submission_id"`
	Day                Day          `gorm:"column:day;type:char(10);not null;index:idx_vote_records_day" json:"day"`
	CastAt             time.Time    `gorm:"column:cast_at;not null" json:"cast_at"`
}

type WinnerRecord struct {
	ID                   WinnerID     `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	SubmissionID         SubmissionID `gorm:"column:submission_id;type:varchar(64);not null;uniqueIndex:idx_winner_records_submission" json:"submission_id"`
	UserID               UserID       `gorm:"column:user_id;type:varchar(128);not null;index:idx_winner_records_user" json:"user_id"`
	RoomID               RoomID       `gorm:"column:room_id;type:varchar(32)" json:"room_id,omitempty"`
	Day                  Day          `gorm:"column:day;type:char(10);not null;index:idx_winner_records_day" json:"day"`
	Image                string       `gorm:"column:image;type:text" json:"image"`
	VoteCountAtSelection int64        `gorm:"column:vote_count_at_selection;not null" json:"vote_count_at_selection"`
	SelectedAt           time.Time    `gorm:"column:selected_at;not null" json:"selected_at"`
}

type User struct {
	ID              UserID    `gorm:"column:id;type:varchar(128);primaryKey" json:"id"`
	Username        string    `gorm:"column:username;type:text;not null" json:"username"`
	Email           string    `gorm:"column:email;type:text" json:"email"`
	WinCount        int64     `gorm:"column:win_count;not null;default:0;index:idx_users_win_count" json:"win_count"`
	HasSeenTutorial bool      `gorm:"column:has_seen_tutorial;not null;default:false" json:"has_seen_tutorial"`
	IsVerified      bool      `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	CriadoEm        time.Time `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

// Theme é uma palavra aguardando na fila de temas.
type Theme struct {
	ID       ThemeID   `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Word     string    `gorm:"column:word;type:text;not null" json:"word"`
	QueuedAt time.Time `gorm:"column:queued_at;not null;index:idx_themes_queued_at" json:"queued_at"`
}

// ThemeOfDay registra o tema escolhido para um dia; existe no máximo um por dia.
type ThemeOfDay struct {
	Day       Day       `gorm:"column:day;type:char(10);primaryKey" json:"day"`
	ThemeID   ThemeID   `gorm:"column:theme_id;type:char(26);not null" json:"theme_id"`
	Word      string    `gorm:"column:word;type:text;not null" json:"word"`
	RotatedAt time.Time `gorm:"column:rotated_at;not null" json:"rotated_at"`
}

type Flag struct {
	ID        FlagID       `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	DrawingID SubmissionID `gorm:"column:drawing_id;type:varchar(64);not null;index:idx_flags_drawing" json:"drawing_id"`
	Image     string       `gorm:"column:image;type:text" json:"image"`
	FlaggedBy UserID       `gorm:"column:flagged_by;type:varchar(128);not null;index:idx_flags_flagged_by" json:"flagged_by"`
	CriadoEm  time.Time    `gorm:"column:criado_em;not null" json:"criado_em"`
}

// RoomAssignment resume uma execução do particionamento de salas.
type RoomAssignment struct {
	RoomsCreated        int `json:"rooms_created"`
	SubmissionsAssigned int `json:"submissions_assigned"`
}

func (Submission) TableName() string { return "submissions" }

func (VoteRecord) TableName() string { return "vote_records" }

func (WinnerRecord) TableName() string { return "winner_records" }

func (User) TableName() string { return "users" }

func (Theme) TableName() string { return "themes" }

func (ThemeOfDay) TableName() string { return "themes_of_day" }

func (Flag) TableName() string { return "flags" }
