package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/realtime"
	"github.com/hexisle/island-conquest/repositories"
	"github.com/hexisle/island-conquest/scheduler"
	"github.com/hexisle/island-conquest/storage"
)

type CreateTournamentInput struct {
	Name                   string  `json:"name"`
	Description            *string `json:"description"`
	StartDate              string  `json:"start_date"`
	EndDate                string  `json:"end_date"`
	SessionDurationSeconds int     `json:"session_duration_seconds"`
	BreakDurationSeconds   int     `json:"break_duration_seconds"`
	MaxPlayersPerTeam      int     `json:"max_players_per_team"`
	ExcludedDays           []int   `json:"excluded_days"`
	ActiveHoursStart       *string `json:"active_hours_start"`
	ActiveHoursEnd         *string `json:"active_hours_end"`
	Team1Name              string  `json:"team1_name"`
	Team1Color             string  `json:"team1_color"`
	Team2Name              string  `json:"team2_name"`
	Team2Color             string  `json:"team2_color"`
	QuestionSetID          int     `json:"question_set_id"`
	GridSize               int     `json:"grid_size"`
	TimePerQuestionSeconds int     `json:"time_per_question_seconds"`
	PointsPerCorrect       int     `json:"points_per_correct"`
}

// TournamentService is the admin authoring surface: tournament CRUD,
// lifecycle control, and pre-generation of the pending session series the
// scheduler later walks through.
type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input CreateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	SetTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	GenerateSessions(ctx context.Context, tournamentID int) ([]models.TournamentSession, error)
	ListSessions(ctx context.Context, tournamentID int) ([]models.TournamentSession, error)
	UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error)
	UploadTeamIcon(ctx context.Context, id int, side models.TeamSide, contentType string, r io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournaments repositories.TournamentRepository
	sessions    repositories.SessionRepository
	uploader    storage.FileUploader
	hub         *realtime.Hub
	logger      *slog.Logger
}

func NewTournamentService(
	tournaments repositories.TournamentRepository,
	sessions repositories.SessionRepository,
	uploader storage.FileUploader,
	hub *realtime.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournaments: tournaments,
		sessions:    sessions,
		uploader:    uploader,
		hub:         hub,
		logger:      logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	t, err := tournamentFromInput(input)
	if err != nil {
		return nil, err
	}
	t.Status = models.TournamentScheduled

	if err := s.tournaments.Create(ctx, t); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	s.populateAssetURLs(t)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournaments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateAssetURLs(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input CreateTournamentInput) (*models.Tournament, error) {
	existing, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	updated, err := tournamentFromInput(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt

	if err := s.tournaments.Update(ctx, updated); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.hub.BroadcastToRoom(realtime.TournamentRoom(id), realtime.MessageTournamentUpdated, updated)
	return updated, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	if err := s.tournaments.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

// SetTournamentStatus drives the admin pause/resume/complete controls
// through an explicit transition table; the scheduler never calls this.
func (s *tournamentService) SetTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if !isValidTournamentTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}

	if err := s.tournaments.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, s.mapRepoError(err)
	}
	t.Status = status

	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id), slog.String("status", string(status)))
	s.hub.BroadcastToRoom(realtime.TournamentRoom(id), realtime.MessageTournamentUpdated, t)
	return t, nil
}

// GenerateSessions materializes the pending session series for the whole
// schedule. It refuses to run twice for the same tournament.
func (s *tournamentService) GenerateSessions(ctx context.Context, tournamentID int) ([]models.TournamentSession, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	existing, err := s.sessions.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrTournamentHasSessions
	}

	planned := PlanSessions(t)
	for i := range planned {
		if err := s.sessions.Create(ctx, nil, &planned[i]); err != nil {
			return nil, fmt.Errorf("create session %d: %w", planned[i].SessionNumber, err)
		}
	}

	s.logger.InfoContext(ctx, "sessions generated",
		slog.Int("tournament_id", tournamentID), slog.Int("count", len(planned)))
	s.hub.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.MessageSessionsChanged, nil)
	return planned, nil
}

func (s *tournamentService) ListSessions(ctx context.Context, tournamentID int) ([]models.TournamentSession, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.sessions.ListByTournament(ctx, tournamentID)
}

// PlanSessions lays out back-to-back session slots separated by the break
// duration across the tournament's schedule bounds. Slots whose start falls
// on an excluded weekday or outside the active-hours window are skipped
// rather than created: the scheduling window would hold such a session
// pending past its scheduled end, and it would then activate stale and be
// completed one tick later as a 0-0 tie.
func PlanSessions(t *models.Tournament) []models.TournamentSession {
	sessions := make([]models.TournamentSession, 0)
	start := t.StartDate
	number := 1

	for {
		end := start.Add(t.SessionDuration())
		if end.After(t.EndDate) {
			break
		}
		if !scheduler.CanActivateNow(t, start) {
			start = end.Add(t.BreakDuration())
			continue
		}
		sessions = append(sessions, models.TournamentSession{
			TournamentID:   t.ID,
			SessionNumber:  number,
			ScheduledStart: start,
			ScheduledEnd:   end,
			Status:         models.SessionPending,
		})
		start = end.Add(t.BreakDuration())
		number++
	}
	return sessions
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	key, err := s.uploadAsset(ctx, fmt.Sprintf("tournaments/%d/logo", id), contentType, r)
	if err != nil {
		return nil, err
	}
	if err := s.tournaments.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, s.mapRepoError(err)
	}
	s.deleteAsset(ctx, t.LogoKey)
	t.LogoKey = &key
	s.populateAssetURLs(t)
	return t, nil
}

func (s *tournamentService) UploadTeamIcon(ctx context.Context, id int, side models.TeamSide, contentType string, r io.Reader) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	key, err := s.uploadAsset(ctx, fmt.Sprintf("tournaments/%d/%s-icon", id, side), contentType, r)
	if err != nil {
		return nil, err
	}
	if err := s.tournaments.UpdateTeamIconKey(ctx, id, side, &key); err != nil {
		return nil, s.mapRepoError(err)
	}
	if side == models.SideTeam2 {
		s.deleteAsset(ctx, t.Team2IconKey)
		t.Team2IconKey = &key
	} else {
		s.deleteAsset(ctx, t.Team1IconKey)
		t.Team1IconKey = &key
	}
	s.populateAssetURLs(t)
	return t, nil
}

func (s *tournamentService) uploadAsset(ctx context.Context, prefix, contentType string, r io.Reader) (string, error) {
	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, r); err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	return key, nil
}

// deleteAsset removes a replaced object, best effort: the new key is already
// committed, so a failed cleanup only leaks storage.
func (s *tournamentService) deleteAsset(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.uploader.Delete(ctx, *key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete replaced asset",
			slog.String("key", *key), slog.Any("error", err))
	}
}

func (s *tournamentService) populateAssetURLs(t *models.Tournament) {
	if s.uploader == nil {
		return
	}
	if t.LogoKey != nil && *t.LogoKey != "" {
		if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
	if t.Team1IconKey != nil && *t.Team1IconKey != "" {
		if url := s.uploader.GetPublicURL(*t.Team1IconKey); url != "" {
			t.Team1IconURL = &url
		}
	}
	if t.Team2IconKey != nil && *t.Team2IconKey != "" {
		if url := s.uploader.GetPublicURL(*t.Team2IconKey); url != "" {
			t.Team2IconURL = &url
		}
	}
}

func (s *tournamentService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	default:
		return err
	}
}
