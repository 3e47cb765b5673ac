package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/realtime"
	"github.com/hexisle/island-conquest/repositories"
)

// LiveGameService owns the lifecycle of live match records: creation in
// lobby, the playing clock, and the terminal ended state. Every transition is
// broadcast to the owning tournament's realtime room.
type LiveGameService interface {
	CreateLiveGame(ctx context.Context, hostID int) (*models.LiveGame, error)
	GetLiveGame(ctx context.Context, id int) (*models.LiveGame, error)
	StartGame(ctx context.Context, id int, duration time.Duration) (*models.LiveGame, error)
	EndGame(ctx context.Context, id int) (*models.LiveGame, error)
}

type liveGameService struct {
	games  repositories.LiveGameRepository
	hosts  repositories.GameHostRepository
	hub    *realtime.Hub
	logger *slog.Logger
	now    func() time.Time
}

func NewLiveGameService(
	games repositories.LiveGameRepository,
	hosts repositories.GameHostRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) LiveGameService {
	return &liveGameService{
		games:  games,
		hosts:  hosts,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

func (s *liveGameService) CreateLiveGame(ctx context.Context, hostID int) (*models.LiveGame, error) {
	game := &models.LiveGame{
		HostID:   hostID,
		JoinCode: uuid.NewString(),
		Status:   models.GameLobby,
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create live game: %w", err)
	}

	s.broadcast(ctx, game)
	return game, nil
}

func (s *liveGameService) GetLiveGame(ctx context.Context, id int) (*models.LiveGame, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLiveGameNotFound) {
			return nil, ErrLiveGameNotFound
		}
		return nil, err
	}
	return game, nil
}

// StartGame moves a lobby game to playing and sets its clock. The update is
// conditional on the lobby status, so two racing callers cannot both start
// the clock.
func (s *liveGameService) StartGame(ctx context.Context, id int, duration time.Duration) (*models.LiveGame, error) {
	now := s.now()
	endsAt := now.Add(duration)

	started, err := s.games.Start(ctx, id, now, endsAt)
	if err != nil {
		return nil, fmt.Errorf("start live game %d: %w", id, err)
	}
	if !started {
		game, getErr := s.GetLiveGame(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if game.Status == models.GamePlaying {
			// Already started by a concurrent caller; treat as success.
			return game, nil
		}
		return nil, ErrGameNotStartable
	}

	game, err := s.GetLiveGame(ctx, id)
	if err != nil {
		return nil, err
	}
	s.broadcast(ctx, game)
	return game, nil
}

// EndGame moves a playing game to ended. Ending an already-ended game is a
// benign no-op so the completion handler can be retried safely.
func (s *liveGameService) EndGame(ctx context.Context, id int) (*models.LiveGame, error) {
	ended, err := s.games.End(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("end live game %d: %w", id, err)
	}

	game, getErr := s.GetLiveGame(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if !ended && game.Status != models.GameEnded {
		return nil, ErrGameNotEndable
	}

	if ended {
		s.broadcast(ctx, game)
	}
	return game, nil
}

// broadcast routes the game update to the owning tournament's room, resolved
// through the host record. Broadcast failures are logged, never surfaced.
func (s *liveGameService) broadcast(ctx context.Context, game *models.LiveGame) {
	host, err := s.hosts.GetByID(ctx, game.HostID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve host for broadcast",
			slog.Int("live_game_id", game.ID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(host.TournamentID), realtime.MessageGameUpdated, game)
}
