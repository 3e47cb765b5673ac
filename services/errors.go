package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors.
	ErrValidationFailed                  = errors.New("validation failed")
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentDatesRequired           = errors.New("tournament start and end dates are required")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidDuration         = errors.New("session and break durations must be positive")
	ErrTournamentInvalidCapacity         = errors.New("max players per team must be positive")
	ErrTournamentInvalidExcludedDay      = errors.New("excluded days must be weekday indices 0-6")
	ErrTournamentInvalidActiveHours      = errors.New("active hours must be HH:MM with start before end")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentHasSessions             = errors.New("tournament already has generated sessions")

	// Conflict errors.
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Entity-specific not-found errors.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSessionNotFound    = errors.New("tournament session not found")
	ErrLiveGameNotFound   = errors.New("live game not found")
	ErrPlayerNotFound     = errors.New("tournament player not found")

	// Live-game lifecycle errors.
	ErrGameNotStartable = errors.New("live game is not in lobby status")
	ErrGameNotEndable   = errors.New("live game is not in playing status")
)
