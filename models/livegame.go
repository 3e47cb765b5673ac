package models

import "time"

// LiveGameStatus mirrors the live_game_status ENUM in the database.
type LiveGameStatus string

const (
	GameLobby   LiveGameStatus = "lobby"
	GamePlaying LiveGameStatus = "playing"
	GameEnded   LiveGameStatus = "ended"
)

// LiveGame is the in-progress match record backing one active session. The
// scheduler creates, starts and ends it; gameplay code owns everything else
// (territory claims, score increments, question flow).
type LiveGame struct {
	ID         int            `json:"id" db:"id"`
	HostID     int            `json:"host_id" db:"host_id"`
	JoinCode   string         `json:"join_code" db:"join_code"`
	Status     LiveGameStatus `json:"status" db:"status"`
	Team1Score int            `json:"team1_score" db:"team1_score"`
	Team2Score int            `json:"team2_score" db:"team2_score"`
	StartedAt  *time.Time     `json:"started_at,omitempty" db:"started_at"`
	EndsAt     *time.Time     `json:"ends_at,omitempty" db:"ends_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
