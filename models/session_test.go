package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{SessionPending, SessionActive, true},
		{SessionActive, SessionCompleted, true},
		{SessionPending, SessionCompleted, false},
		{SessionActive, SessionPending, false},
		{SessionCompleted, SessionActive, false},
		{SessionCompleted, SessionPending, false},
		{SessionPending, SessionPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestWinnerFromScores(t *testing.T) {
	assert.Equal(t, WinnerTeam1, WinnerFromScores(7, 3))
	assert.Equal(t, WinnerTeam2, WinnerFromScores(3, 7))
	assert.Equal(t, WinnerTie, WinnerFromScores(5, 5))
	assert.Equal(t, WinnerTie, WinnerFromScores(0, 0))
}

func TestSessionExpiredAndDue(t *testing.T) {
	now := time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC)
	s := TournamentSession{
		ScheduledStart: now,
		ScheduledEnd:   now.Add(8 * time.Minute),
	}

	// Both boundaries are inclusive: a session is due at its exact
	// scheduled start and expired at its exact scheduled end.
	assert.True(t, s.Due(now))
	assert.False(t, s.Due(now.Add(-time.Second)))
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(8*time.Minute)))
	assert.False(t, s.Expired(now.Add(8*time.Minute-time.Second)))
}

func TestGameHostName(t *testing.T) {
	assert.Equal(t, "tournament-3-session-7", GameHostName(3, 7))
}

func TestNewGameHostForSession(t *testing.T) {
	iconKey := "tournaments/1/team1.png"
	tournament := &Tournament{
		ID:                     1,
		SessionDurationSeconds: 480,
		Team1Name:              "Red Krakens",
		Team1Color:             "#e63946",
		Team1IconKey:           &iconKey,
		Team2Name:              "Blue Gulls",
		Team2Color:             "#457b9d",
		QuestionSetID:          7,
		GridSize:               8,
		TimePerQuestionSeconds: 20,
		PointsPerCorrect:       10,
	}

	host := NewGameHostForSession(tournament, 2)
	assert.Equal(t, "tournament-1-session-2", host.Name)
	assert.Equal(t, 1, host.TournamentID)
	assert.Equal(t, 480, host.DurationSeconds)
	assert.Equal(t, "Red Krakens", host.Team1Name)
	assert.Equal(t, &iconKey, host.Team1IconKey)
	assert.Equal(t, 8, host.GridSize)
	assert.Equal(t, 10, host.PointsPerCorrect)
}
