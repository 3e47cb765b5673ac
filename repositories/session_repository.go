package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound       = errors.New("tournament session not found")
	ErrSessionNumberConflict = errors.New("session number already exists for this tournament")
)

// SessionRepository persists tournament sessions. The two Claim methods are
// the concurrency boundary of the whole scheduler: they are conditional
// updates whose WHERE clause includes the expected current status, so of any
// number of racing callers exactly one observes a claimed=true result.
type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.TournamentSession) error
	GetByID(ctx context.Context, id int) (*models.TournamentSession, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentSession, error)
	ActiveByTournament(ctx context.Context, tournamentID int) (*models.TournamentSession, error)
	NextPending(ctx context.Context, tournamentID int) (*models.TournamentSession, error)
	ClaimActivation(ctx context.Context, id int, actualStart time.Time, liveGameID int) (bool, error)
	ClaimCompletion(ctx context.Context, id int, actualEnd time.Time) (bool, error)
	SetResult(ctx context.Context, id int, team1Score, team2Score int, winner models.Winner) error
}

const sessionColumns = `
	id, tournament_id, session_number, scheduled_start, scheduled_end,
	status, actual_start, actual_end, team1_final_score, team2_final_score,
	winner, live_game_id, created_at`

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, s *models.TournamentSession) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_sessions
			(tournament_id, session_number, scheduled_start, scheduled_end, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		s.TournamentID, s.SessionNumber, s.ScheduledStart, s.ScheduledEnd, s.Status,
	).Scan(&s.ID, &s.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrSessionNumberConflict
	}
	return err
}

func scanSession(row interface {
	Scan(dest ...interface{}) error
}) (*models.TournamentSession, error) {
	s := &models.TournamentSession{}
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.SessionNumber, &s.ScheduledStart, &s.ScheduledEnd,
		&s.Status, &s.ActualStart, &s.ActualEnd, &s.Team1FinalScore, &s.Team2FinalScore,
		&s.Winner, &s.LiveGameID, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.TournamentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM tournament_sessions WHERE id = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM tournament_sessions
		WHERE tournament_id = $1
		ORDER BY session_number`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.TournamentSession, 0)
	for rows.Next() {
		s, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *postgresSessionRepository) ActiveByTournament(ctx context.Context, tournamentID int) (*models.TournamentSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM tournament_sessions
		WHERE tournament_id = $1 AND status = $2
		ORDER BY session_number
		LIMIT 1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, tournamentID, models.SessionActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) NextPending(ctx context.Context, tournamentID int) (*models.TournamentSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM tournament_sessions
		WHERE tournament_id = $1 AND status = $2
		ORDER BY session_number
		LIMIT 1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, tournamentID, models.SessionPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) ClaimActivation(ctx context.Context, id int, actualStart time.Time, liveGameID int) (bool, error) {
	query := `
		UPDATE tournament_sessions
		SET status = $1, actual_start = $2, live_game_id = $3
		WHERE id = $4 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		models.SessionActive, actualStart, liveGameID, id, models.SessionPending)
	if err != nil {
		return false, err
	}
	return claimedRow(result)
}

func (r *postgresSessionRepository) ClaimCompletion(ctx context.Context, id int, actualEnd time.Time) (bool, error) {
	query := `
		UPDATE tournament_sessions
		SET status = $1, actual_end = $2
		WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query,
		models.SessionCompleted, actualEnd, id, models.SessionActive)
	if err != nil {
		return false, err
	}
	return claimedRow(result)
}

func (r *postgresSessionRepository) SetResult(ctx context.Context, id int, team1Score, team2Score int, winner models.Winner) error {
	query := `
		UPDATE tournament_sessions
		SET team1_final_score = $1, team2_final_score = $2, winner = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, team1Score, team2Score, winner, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}
