package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentScheduled TournamentStatus = "scheduled"
	TournamentActive    TournamentStatus = "active"
	TournamentPaused    TournamentStatus = "paused"
	TournamentCompleted TournamentStatus = "completed"
)

// Tournament governs a recurring series of timed island-conquest sessions.
// ExcludedDays uses weekday indices with 0=Sunday; the active-hours window is
// a pair of "HH:MM" civil times evaluated in the game's fixed timezone.
type Tournament struct {
	ID                     int              `json:"id" db:"id"`
	Name                   string           `json:"name" db:"name"`
	Description            *string          `json:"description,omitempty" db:"description"`
	StartDate              time.Time        `json:"start_date" db:"start_date"`
	EndDate                time.Time        `json:"end_date" db:"end_date"`
	SessionDurationSeconds int              `json:"session_duration_seconds" db:"session_duration_seconds"`
	BreakDurationSeconds   int              `json:"break_duration_seconds" db:"break_duration_seconds"`
	MaxPlayersPerTeam      int              `json:"max_players_per_team" db:"max_players_per_team"`
	Status                 TournamentStatus `json:"status" db:"status"`
	ExcludedDays           []int            `json:"excluded_days" db:"excluded_days"`
	ActiveHoursStart       *string          `json:"active_hours_start,omitempty" db:"active_hours_start"`
	ActiveHoursEnd         *string          `json:"active_hours_end,omitempty" db:"active_hours_end"`

	// Game design carried onto every session's host record.
	Team1Name              string  `json:"team1_name" db:"team1_name"`
	Team1Color             string  `json:"team1_color" db:"team1_color"`
	Team1IconKey           *string `json:"-" db:"team1_icon_key"`
	Team1IconURL           *string `json:"team1_icon_url,omitempty" db:"-"`
	Team2Name              string  `json:"team2_name" db:"team2_name"`
	Team2Color             string  `json:"team2_color" db:"team2_color"`
	Team2IconKey           *string `json:"-" db:"team2_icon_key"`
	Team2IconURL           *string `json:"team2_icon_url,omitempty" db:"-"`
	QuestionSetID          int     `json:"question_set_id" db:"question_set_id"`
	GridSize               int     `json:"grid_size" db:"grid_size"`
	TimePerQuestionSeconds int     `json:"time_per_question_seconds" db:"time_per_question_seconds"`
	PointsPerCorrect       int     `json:"points_per_correct" db:"points_per_correct"`

	LogoKey   *string   `json:"-" db:"logo_key"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Optional related entities, populated by services, never scanned directly.
	Sessions []TournamentSession `json:"sessions,omitempty" db:"-"`
	Players  []TournamentPlayer  `json:"players,omitempty" db:"-"`
}

// SessionDuration is the configured play time of one session.
func (t *Tournament) SessionDuration() time.Duration {
	return time.Duration(t.SessionDurationSeconds) * time.Second
}

// BreakDuration is the configured gap between consecutive sessions.
func (t *Tournament) BreakDuration() time.Duration {
	return time.Duration(t.BreakDurationSeconds) * time.Second
}
