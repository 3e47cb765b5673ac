package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hexisle/island-conquest/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrTournamentInUse        = errors.New("tournament is in use (sessions/players exist)")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error
	UpdateTeamIconKey(ctx context.Context, tournamentID int, side models.TeamSide, iconKey *string) error
	Delete(ctx context.Context, id int) error
}

const tournamentColumns = `
	id, name, description, start_date, end_date,
	session_duration_seconds, break_duration_seconds, max_players_per_team,
	status, excluded_days, active_hours_start, active_hours_end,
	team1_name, team1_color, team1_icon_key,
	team2_name, team2_color, team2_icon_key,
	question_set_id, grid_size, time_per_question_seconds, points_per_correct,
	logo_key, created_at`

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	executor := r.getExecutor(nil)
	query := `
		INSERT INTO tournaments (
			name, description, start_date, end_date,
			session_duration_seconds, break_duration_seconds, max_players_per_team,
			status, excluded_days, active_hours_start, active_hours_end,
			team1_name, team1_color, team1_icon_key,
			team2_name, team2_color, team2_icon_key,
			question_set_id, grid_size, time_per_question_seconds, points_per_correct,
			logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Description, t.StartDate, t.EndDate,
		t.SessionDurationSeconds, t.BreakDurationSeconds, t.MaxPlayersPerTeam,
		t.Status, pq.Array(t.ExcludedDays), t.ActiveHoursStart, t.ActiveHoursEnd,
		t.Team1Name, t.Team1Color, t.Team1IconKey,
		t.Team2Name, t.Team2Color, t.Team2IconKey,
		t.QuestionSetID, t.GridSize, t.TimePerQuestionSeconds, t.PointsPerCorrect,
		t.LogoKey,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func scanTournament(row interface {
	Scan(dest ...interface{}) error
}) (*models.Tournament, error) {
	t := &models.Tournament{}
	var excludedDays pq.Int64Array
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate,
		&t.SessionDurationSeconds, &t.BreakDurationSeconds, &t.MaxPlayersPerTeam,
		&t.Status, &excludedDays, &t.ActiveHoursStart, &t.ActiveHoursEnd,
		&t.Team1Name, &t.Team1Color, &t.Team1IconKey,
		&t.Team2Name, &t.Team2Color, &t.Team2IconKey,
		&t.QuestionSetID, &t.GridSize, &t.TimePerQuestionSeconds, &t.PointsPerCorrect,
		&t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ExcludedDays = make([]int, len(excludedDays))
	for i, d := range excludedDays {
		t.ExcludedDays[i] = int(d)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	executor := r.getExecutor(nil)
	// Logo and icon keys are updated by their dedicated methods.
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			start_date = $3,
			end_date = $4,
			session_duration_seconds = $5,
			break_duration_seconds = $6,
			max_players_per_team = $7,
			status = $8,
			excluded_days = $9,
			active_hours_start = $10,
			active_hours_end = $11,
			team1_name = $12,
			team1_color = $13,
			team2_name = $14,
			team2_color = $15,
			question_set_id = $16,
			grid_size = $17,
			time_per_question_seconds = $18,
			points_per_correct = $19
		WHERE id = $20`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Description, t.StartDate, t.EndDate,
		t.SessionDurationSeconds, t.BreakDurationSeconds, t.MaxPlayersPerTeam,
		t.Status, pq.Array(t.ExcludedDays), t.ActiveHoursStart, t.ActiveHoursEnd,
		t.Team1Name, t.Team1Color, t.Team2Name, t.Team2Color,
		t.QuestionSetID, t.GridSize, t.TimePerQuestionSeconds, t.PointsPerCorrect,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}

	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateTeamIconKey(ctx context.Context, tournamentID int, side models.TeamSide, iconKey *string) error {
	executor := r.getExecutor(nil)
	column := "team1_icon_key"
	if side == models.SideTeam2 {
		column = "team2_icon_key"
	}
	query := fmt.Sprintf(`UPDATE tournaments SET %s = $1 WHERE id = $2`, column)
	result, err := executor.ExecContext(ctx, query, iconKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament team icon key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			// FK violations from sessions or players pointing at this
			// tournament mean it is still referenced.
			return ErrTournamentInUse
		}
	}
	return err
}
