package services

import (
	"testing"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateTournamentInput {
	return CreateTournamentInput{
		Name:                   "Autumn Island Conquest",
		StartDate:              "2025-09-01T08:00:00Z",
		EndDate:                "2025-09-30T20:00:00Z",
		SessionDurationSeconds: 480,
		BreakDurationSeconds:   120,
		MaxPlayersPerTeam:      20,
		QuestionSetID:          3,
	}
}

func TestTournamentFromInput(t *testing.T) {
	tournament, err := tournamentFromInput(validInput())
	require.NoError(t, err)

	assert.Equal(t, "Autumn Island Conquest", tournament.Name)
	assert.Equal(t, time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC), tournament.StartDate)
	assert.Equal(t, 480, tournament.SessionDurationSeconds)

	// Unset game-design fields fall back to defaults.
	assert.Equal(t, "Team 1", tournament.Team1Name)
	assert.Equal(t, "Team 2", tournament.Team2Name)
	assert.Equal(t, 7, tournament.GridSize)
	assert.Equal(t, 20, tournament.TimePerQuestionSeconds)
	assert.Equal(t, 10, tournament.PointsPerCorrect)
}

func TestTournamentFromInputValidation(t *testing.T) {
	nine := "09:00"
	twentyOne := "21:00"
	badClock := "9am"

	tests := []struct {
		name    string
		mutate  func(*CreateTournamentInput)
		wantErr error
	}{
		{
			name:    "blank name",
			mutate:  func(in *CreateTournamentInput) { in.Name = "   " },
			wantErr: ErrTournamentNameRequired,
		},
		{
			name:    "missing dates",
			mutate:  func(in *CreateTournamentInput) { in.StartDate = "" },
			wantErr: ErrTournamentDatesRequired,
		},
		{
			name: "end before start",
			mutate: func(in *CreateTournamentInput) {
				in.StartDate = "2025-09-30T20:00:00Z"
				in.EndDate = "2025-09-01T08:00:00Z"
			},
			wantErr: ErrTournamentInvalidDateRange,
		},
		{
			name:    "unparsable date",
			mutate:  func(in *CreateTournamentInput) { in.StartDate = "next tuesday" },
			wantErr: ErrValidationFailed,
		},
		{
			name:    "zero session duration",
			mutate:  func(in *CreateTournamentInput) { in.SessionDurationSeconds = 0 },
			wantErr: ErrTournamentInvalidDuration,
		},
		{
			name:    "negative break duration",
			mutate:  func(in *CreateTournamentInput) { in.BreakDurationSeconds = -1 },
			wantErr: ErrTournamentInvalidDuration,
		},
		{
			name:    "zero capacity",
			mutate:  func(in *CreateTournamentInput) { in.MaxPlayersPerTeam = 0 },
			wantErr: ErrTournamentInvalidCapacity,
		},
		{
			name:    "excluded day out of range",
			mutate:  func(in *CreateTournamentInput) { in.ExcludedDays = []int{0, 7} },
			wantErr: ErrTournamentInvalidExcludedDay,
		},
		{
			name:    "half-specified active hours",
			mutate:  func(in *CreateTournamentInput) { in.ActiveHoursStart = &nine },
			wantErr: ErrTournamentInvalidActiveHours,
		},
		{
			name: "active hours end before start",
			mutate: func(in *CreateTournamentInput) {
				in.ActiveHoursStart = &twentyOne
				in.ActiveHoursEnd = &nine
			},
			wantErr: ErrTournamentInvalidActiveHours,
		},
		{
			name: "unparsable active hours",
			mutate: func(in *CreateTournamentInput) {
				in.ActiveHoursStart = &badClock
				in.ActiveHoursEnd = &twentyOne
			},
			wantErr: ErrTournamentInvalidActiveHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := tournamentFromInput(input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsValidTournamentTransition(t *testing.T) {
	tests := []struct {
		from models.TournamentStatus
		to   models.TournamentStatus
		want bool
	}{
		{models.TournamentScheduled, models.TournamentActive, true},
		{models.TournamentActive, models.TournamentPaused, true},
		{models.TournamentActive, models.TournamentCompleted, true},
		{models.TournamentPaused, models.TournamentActive, true},
		{models.TournamentPaused, models.TournamentCompleted, true},
		{models.TournamentActive, models.TournamentActive, true},
		{models.TournamentScheduled, models.TournamentCompleted, false},
		{models.TournamentScheduled, models.TournamentPaused, false},
		{models.TournamentCompleted, models.TournamentActive, false},
		{models.TournamentActive, models.TournamentScheduled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidTournamentTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
