package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hexisle/island-conquest/models"
	"github.com/lib/pq"
)

var (
	ErrGameHostNotFound     = errors.New("game host not found")
	ErrGameHostNameConflict = errors.New("game host name already exists")
)

// GameHostRepository persists frozen per-session game configurations. Hosts
// are addressed by their deterministic name so the activation handler's
// lookup-then-create step stays idempotent.
type GameHostRepository interface {
	Create(ctx context.Context, host *models.GameHost) error
	GetByID(ctx context.Context, id int) (*models.GameHost, error)
	GetByName(ctx context.Context, name string) (*models.GameHost, error)
}

type postgresGameHostRepository struct {
	db *sql.DB
}

func NewPostgresGameHostRepository(db *sql.DB) GameHostRepository {
	return &postgresGameHostRepository{db: db}
}

func (r *postgresGameHostRepository) Create(ctx context.Context, h *models.GameHost) error {
	query := `
		INSERT INTO game_hosts (
			name, tournament_id,
			team1_name, team1_color, team1_icon_key,
			team2_name, team2_color, team2_icon_key,
			question_set_id, duration_seconds, grid_size,
			time_per_question_seconds, points_per_correct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.Name, h.TournamentID,
		h.Team1Name, h.Team1Color, h.Team1IconKey,
		h.Team2Name, h.Team2Color, h.Team2IconKey,
		h.QuestionSetID, h.DurationSeconds, h.GridSize,
		h.TimePerQuestionSeconds, h.PointsPerCorrect,
	).Scan(&h.ID, &h.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrGameHostNameConflict
	}
	return err
}

const gameHostColumns = `
	id, name, tournament_id,
	team1_name, team1_color, team1_icon_key,
	team2_name, team2_color, team2_icon_key,
	question_set_id, duration_seconds, grid_size,
	time_per_question_seconds, points_per_correct, created_at`

func (r *postgresGameHostRepository) scanHost(row *sql.Row) (*models.GameHost, error) {
	h := &models.GameHost{}
	err := row.Scan(
		&h.ID, &h.Name, &h.TournamentID,
		&h.Team1Name, &h.Team1Color, &h.Team1IconKey,
		&h.Team2Name, &h.Team2Color, &h.Team2IconKey,
		&h.QuestionSetID, &h.DurationSeconds, &h.GridSize,
		&h.TimePerQuestionSeconds, &h.PointsPerCorrect, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameHostNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *postgresGameHostRepository) GetByID(ctx context.Context, id int) (*models.GameHost, error) {
	query := `SELECT ` + gameHostColumns + ` FROM game_hosts WHERE id = $1`
	return r.scanHost(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresGameHostRepository) GetByName(ctx context.Context, name string) (*models.GameHost, error) {
	query := `SELECT ` + gameHostColumns + ` FROM game_hosts WHERE name = $1`
	return r.scanHost(r.db.QueryRowContext(ctx, query, name))
}
