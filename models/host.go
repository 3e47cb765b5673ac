package models

import (
	"fmt"
	"time"
)

// GameHost is the frozen per-session game configuration. It is materialized
// lazily by the activation handler and looked up by its deterministic name,
// which makes the materialization step idempotent across racing clients.
type GameHost struct {
	ID                     int       `json:"id" db:"id"`
	Name                   string    `json:"name" db:"name"`
	TournamentID           int       `json:"tournament_id" db:"tournament_id"`
	Team1Name              string    `json:"team1_name" db:"team1_name"`
	Team1Color             string    `json:"team1_color" db:"team1_color"`
	Team1IconKey           *string   `json:"-" db:"team1_icon_key"`
	Team2Name              string    `json:"team2_name" db:"team2_name"`
	Team2Color             string    `json:"team2_color" db:"team2_color"`
	Team2IconKey           *string   `json:"-" db:"team2_icon_key"`
	QuestionSetID          int       `json:"question_set_id" db:"question_set_id"`
	DurationSeconds        int       `json:"duration_seconds" db:"duration_seconds"`
	GridSize               int       `json:"grid_size" db:"grid_size"`
	TimePerQuestionSeconds int       `json:"time_per_question_seconds" db:"time_per_question_seconds"`
	PointsPerCorrect       int       `json:"points_per_correct" db:"points_per_correct"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// GameHostName derives the unique host-record name for a tournament session.
func GameHostName(tournamentID, sessionNumber int) string {
	return fmt.Sprintf("tournament-%d-session-%d", tournamentID, sessionNumber)
}

// NewGameHostForSession copies a tournament's game design into a host record
// for the given session.
func NewGameHostForSession(t *Tournament, sessionNumber int) *GameHost {
	return &GameHost{
		Name:                   GameHostName(t.ID, sessionNumber),
		TournamentID:           t.ID,
		Team1Name:              t.Team1Name,
		Team1Color:             t.Team1Color,
		Team1IconKey:           t.Team1IconKey,
		Team2Name:              t.Team2Name,
		Team2Color:             t.Team2Color,
		Team2IconKey:           t.Team2IconKey,
		QuestionSetID:          t.QuestionSetID,
		DurationSeconds:        t.SessionDurationSeconds,
		GridSize:               t.GridSize,
		TimePerQuestionSeconds: t.TimePerQuestionSeconds,
		PointsPerCorrect:       t.PointsPerCorrect,
	}
}
