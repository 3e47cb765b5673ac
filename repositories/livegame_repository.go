package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hexisle/island-conquest/models"
)

var ErrLiveGameNotFound = errors.New("live game not found")

// LiveGameRepository persists live match records. Start and End follow the
// same conditional-update discipline as session claims: the WHERE clause pins
// the expected current status, so a game cannot be started or ended twice.
type LiveGameRepository interface {
	Create(ctx context.Context, game *models.LiveGame) error
	GetByID(ctx context.Context, id int) (*models.LiveGame, error)
	Start(ctx context.Context, id int, startedAt, endsAt time.Time) (bool, error)
	End(ctx context.Context, id int, endedAt time.Time) (bool, error)
}

const liveGameColumns = `
	id, host_id, join_code, status, team1_score, team2_score,
	started_at, ends_at, ended_at, created_at`

type postgresLiveGameRepository struct {
	db *sql.DB
}

func NewPostgresLiveGameRepository(db *sql.DB) LiveGameRepository {
	return &postgresLiveGameRepository{db: db}
}

func (r *postgresLiveGameRepository) Create(ctx context.Context, g *models.LiveGame) error {
	query := `
		INSERT INTO live_games (host_id, join_code, status, team1_score, team2_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		g.HostID, g.JoinCode, g.Status, g.Team1Score, g.Team2Score,
	).Scan(&g.ID, &g.CreatedAt)
}

func (r *postgresLiveGameRepository) GetByID(ctx context.Context, id int) (*models.LiveGame, error) {
	query := `SELECT ` + liveGameColumns + ` FROM live_games WHERE id = $1`

	g := &models.LiveGame{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.HostID, &g.JoinCode, &g.Status, &g.Team1Score, &g.Team2Score,
		&g.StartedAt, &g.EndsAt, &g.EndedAt, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLiveGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresLiveGameRepository) Start(ctx context.Context, id int, startedAt, endsAt time.Time) (bool, error) {
	query := `
		UPDATE live_games
		SET status = $1, started_at = $2, ends_at = $3
		WHERE id = $4 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		models.GamePlaying, startedAt, endsAt, id, models.GameLobby)
	if err != nil {
		return false, err
	}
	return claimedRow(result)
}

func (r *postgresLiveGameRepository) End(ctx context.Context, id int, endedAt time.Time) (bool, error) {
	query := `
		UPDATE live_games
		SET status = $1, ended_at = $2
		WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query,
		models.GameEnded, endedAt, id, models.GamePlaying)
	if err != nil {
		return false, err
	}
	return claimedRow(result)
}
