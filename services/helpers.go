package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/hexisle/island-conquest/models"
)

func tournamentFromInput(input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}

	start, end, err := parseTournamentDates(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	if input.SessionDurationSeconds <= 0 || input.BreakDurationSeconds < 0 {
		return nil, ErrTournamentInvalidDuration
	}
	if input.MaxPlayersPerTeam <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	for _, d := range input.ExcludedDays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: got %d", ErrTournamentInvalidExcludedDay, d)
		}
	}
	if err := validateActiveHours(input.ActiveHoursStart, input.ActiveHoursEnd); err != nil {
		return nil, err
	}

	return &models.Tournament{
		Name:                   strings.TrimSpace(input.Name),
		Description:            input.Description,
		StartDate:              start,
		EndDate:                end,
		SessionDurationSeconds: input.SessionDurationSeconds,
		BreakDurationSeconds:   input.BreakDurationSeconds,
		MaxPlayersPerTeam:      input.MaxPlayersPerTeam,
		ExcludedDays:           input.ExcludedDays,
		ActiveHoursStart:       input.ActiveHoursStart,
		ActiveHoursEnd:         input.ActiveHoursEnd,
		Team1Name:              defaultString(input.Team1Name, "Team 1"),
		Team1Color:             defaultString(input.Team1Color, "#e74c3c"),
		Team2Name:              defaultString(input.Team2Name, "Team 2"),
		Team2Color:             defaultString(input.Team2Color, "#3498db"),
		QuestionSetID:          input.QuestionSetID,
		GridSize:               defaultInt(input.GridSize, 7),
		TimePerQuestionSeconds: defaultInt(input.TimePerQuestionSeconds, 20),
		PointsPerCorrect:       defaultInt(input.PointsPerCorrect, 10),
	}, nil
}

func parseTournamentDates(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, ErrTournamentDatesRequired
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date: %v", ErrValidationFailed, err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date: %v", ErrValidationFailed, err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date (%s) must be before end date (%s)",
			ErrTournamentInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}

// validateActiveHours accepts either no window at all or a fully specified
// "HH:MM" pair with start strictly before end.
func validateActiveHours(start, end *string) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return ErrTournamentInvalidActiveHours
	}
	startClock, err := time.Parse("15:04", *start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTournamentInvalidActiveHours, err)
	}
	endClock, err := time.Parse("15:04", *end)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTournamentInvalidActiveHours, err)
	}
	if !startClock.Before(endClock) {
		return ErrTournamentInvalidActiveHours
	}
	return nil
}

func isValidTournamentTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentScheduled: {models.TournamentActive},
		models.TournamentActive:    {models.TournamentPaused, models.TournamentCompleted},
		models.TournamentPaused:    {models.TournamentActive, models.TournamentCompleted},
		models.TournamentCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
