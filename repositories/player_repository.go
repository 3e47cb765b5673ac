package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hexisle/island-conquest/models"
)

var ErrPlayerNotFound = errors.New("tournament player not found")

type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.TournamentPlayer, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentPlayer, error)
	Leaderboard(ctx context.Context, tournamentID, limit int) ([]models.TournamentPlayer, error)
}

const playerColumns = `
	id, tournament_id, display_name, team, credits,
	correct_answers, territories, sessions_played, created_at`

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func scanPlayer(row interface {
	Scan(dest ...interface{}) error
}) (*models.TournamentPlayer, error) {
	p := &models.TournamentPlayer{}
	err := row.Scan(
		&p.ID, &p.TournamentID, &p.DisplayName, &p.Team, &p.Credits,
		&p.CorrectAnswers, &p.Territories, &p.SessionsPlayed, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.TournamentPlayer, error) {
	query := `SELECT ` + playerColumns + ` FROM tournament_players WHERE id = $1`
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentPlayer, error) {
	query := `SELECT ` + playerColumns + `
		FROM tournament_players
		WHERE tournament_id = $1
		ORDER BY display_name`
	return r.queryPlayers(ctx, query, tournamentID)
}

func (r *postgresPlayerRepository) Leaderboard(ctx context.Context, tournamentID, limit int) ([]models.TournamentPlayer, error) {
	query := `SELECT ` + playerColumns + `
		FROM tournament_players
		WHERE tournament_id = $1
		ORDER BY credits DESC, correct_answers DESC, display_name
		LIMIT $2`
	return r.queryPlayers(ctx, query, tournamentID, limit)
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]models.TournamentPlayer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.TournamentPlayer, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}
