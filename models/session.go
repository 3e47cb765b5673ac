package models

import "time"

// SessionStatus mirrors the session_status ENUM in the database.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// CanTransitionTo reports whether the session lifecycle permits moving from
// the current status to next. The lifecycle is strictly one-directional:
// pending -> active -> completed.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	allowed := map[SessionStatus][]SessionStatus{
		SessionPending:   {SessionActive},
		SessionActive:    {SessionCompleted},
		SessionCompleted: {},
	}
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Winner identifies the outcome of a completed session.
type Winner string

const (
	WinnerTeam1 Winner = "team1"
	WinnerTeam2 Winner = "team2"
	WinnerTie   Winner = "tie"
)

// WinnerFromScores derives the session outcome by strict score comparison.
func WinnerFromScores(team1, team2 int) Winner {
	switch {
	case team1 > team2:
		return WinnerTeam1
	case team2 > team1:
		return WinnerTeam2
	default:
		return WinnerTie
	}
}

// TournamentSession is one scheduled occurrence of gameplay within a
// tournament. Sessions are pre-created in pending state by the authoring
// flow; the scheduler promotes them to active and later to completed via
// conditional writes, so at most one session per tournament is active at any
// instant.
type TournamentSession struct {
	ID              int           `json:"id" db:"id"`
	TournamentID    int           `json:"tournament_id" db:"tournament_id"`
	SessionNumber   int           `json:"session_number" db:"session_number"`
	ScheduledStart  time.Time     `json:"scheduled_start" db:"scheduled_start"`
	ScheduledEnd    time.Time     `json:"scheduled_end" db:"scheduled_end"`
	Status          SessionStatus `json:"status" db:"status"`
	ActualStart     *time.Time    `json:"actual_start,omitempty" db:"actual_start"`
	ActualEnd       *time.Time    `json:"actual_end,omitempty" db:"actual_end"`
	Team1FinalScore *int          `json:"team1_final_score,omitempty" db:"team1_final_score"`
	Team2FinalScore *int          `json:"team2_final_score,omitempty" db:"team2_final_score"`
	Winner          *Winner       `json:"winner,omitempty" db:"winner"`
	LiveGameID      *int          `json:"live_game_id,omitempty" db:"live_game_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// Expired reports whether the session's scheduled end has passed.
func (s *TournamentSession) Expired(now time.Time) bool {
	return !s.ScheduledEnd.After(now)
}

// Due reports whether the session's scheduled start has passed.
func (s *TournamentSession) Due(now time.Time) bool {
	return !s.ScheduledStart.After(now)
}
