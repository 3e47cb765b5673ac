package models

import "time"

// TeamSide identifies which side of the island a player fights for.
type TeamSide string

const (
	SideTeam1 TeamSide = "team1"
	SideTeam2 TeamSide = "team2"
)

// TournamentPlayer holds a participant's cumulative stats across all sessions
// of one tournament. Gameplay code mutates these; the scheduler never does.
type TournamentPlayer struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	Team           TeamSide  `json:"team" db:"team"`
	Credits        int       `json:"credits" db:"credits"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answers"`
	Territories    int       `json:"territories" db:"territories"`
	SessionsPlayed int       `json:"sessions_played" db:"sessions_played"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
