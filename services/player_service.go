package services

import (
	"context"
	"errors"

	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
)

const defaultLeaderboardLimit = 50

// PlayerService exposes aggregate player stats to the dashboard. The
// scheduler never touches players; gameplay code elsewhere writes the stats
// these queries read.
type PlayerService interface {
	GetPlayer(ctx context.Context, id int) (*models.TournamentPlayer, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentPlayer, error)
	Leaderboard(ctx context.Context, tournamentID, limit int) ([]models.TournamentPlayer, error)
}

type playerService struct {
	players repositories.PlayerRepository
}

func NewPlayerService(players repositories.PlayerRepository) PlayerService {
	return &playerService{players: players}
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.TournamentPlayer, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *playerService) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentPlayer, error) {
	return s.players.ListByTournament(ctx, tournamentID)
}

func (s *playerService) Leaderboard(ctx context.Context, tournamentID, limit int) ([]models.TournamentPlayer, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.players.Leaderboard(ctx, tournamentID, limit)
}
