package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
)

// LiveGameService is the slice of the live-game subsystem the scheduler
// needs. The scheduler creates, starts and ends games; everything that
// happens inside a game belongs to gameplay code.
type LiveGameService interface {
	CreateLiveGame(ctx context.Context, hostID int) (*models.LiveGame, error)
	GetLiveGame(ctx context.Context, id int) (*models.LiveGame, error)
	StartGame(ctx context.Context, id int, duration time.Duration) (*models.LiveGame, error)
	EndGame(ctx context.Context, id int) (*models.LiveGame, error)
}

// Transitioner performs the two session transitions. All shared-state
// mutation goes through conditional writes on the session row; a lost claim
// is a normal outcome, never an error. Any number of Transitioners may run
// concurrently against the same tournament.
type Transitioner struct {
	sessions repositories.SessionRepository
	hosts    repositories.GameHostRepository
	games    LiveGameService
	logger   *slog.Logger
	now      func() time.Time
}

func NewTransitioner(
	sessions repositories.SessionRepository,
	hosts repositories.GameHostRepository,
	games LiveGameService,
	logger *slog.Logger,
) *Transitioner {
	return &Transitioner{
		sessions: sessions,
		hosts:    hosts,
		games:    games,
		logger:   logger,
		now:      time.Now,
	}
}

// CompleteExpired completes the tournament's active session once its
// scheduled end has passed. It returns the completed session only when this
// caller won the conditional claim; (nil, false, nil) means there was nothing
// to do or another client got there first.
func (tr *Transitioner) CompleteExpired(ctx context.Context, t *models.Tournament) (*models.TournamentSession, bool, error) {
	session, err := tr.sessions.ActiveByTournament(ctx, t.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch active session: %w", err)
	}

	now := tr.now()
	if !session.Expired(now) {
		return nil, false, nil
	}
	if !session.Status.CanTransitionTo(models.SessionCompleted) {
		return nil, false, nil
	}

	claimed, err := tr.sessions.ClaimCompletion(ctx, session.ID, now)
	if err != nil {
		return nil, false, fmt.Errorf("claim completion of session %d: %w", session.ID, err)
	}
	if !claimed {
		// Another client completed it already.
		tr.logger.DebugContext(ctx, "completion claim lost",
			slog.Int("tournament_id", t.ID),
			slog.Int("session_id", session.ID))
		return nil, false, nil
	}

	session.Status = models.SessionCompleted
	session.ActualEnd = &now

	// Only the winning claimant finalizes, so the finalize step runs exactly
	// once despite every client polling independently.
	if session.LiveGameID != nil {
		if err := tr.finalize(ctx, session); err != nil {
			return session, true, fmt.Errorf("finalize session %d: %w", session.ID, err)
		}
	}

	tr.logger.InfoContext(ctx, "session completed",
		slog.Int("tournament_id", t.ID),
		slog.Int("session_id", session.ID),
		slog.Int("session_number", session.SessionNumber))
	return session, true, nil
}

// finalize copies the game's final scores onto the completed session and
// ends the game if it is still running.
func (tr *Transitioner) finalize(ctx context.Context, session *models.TournamentSession) error {
	game, err := tr.games.GetLiveGame(ctx, *session.LiveGameID)
	if err != nil {
		return fmt.Errorf("fetch live game %d: %w", *session.LiveGameID, err)
	}
	if game.Status != models.GamePlaying {
		return nil
	}

	winner := models.WinnerFromScores(game.Team1Score, game.Team2Score)
	if err := tr.sessions.SetResult(ctx, session.ID, game.Team1Score, game.Team2Score, winner); err != nil {
		return fmt.Errorf("record session result: %w", err)
	}
	session.Team1FinalScore = &game.Team1Score
	session.Team2FinalScore = &game.Team2Score
	session.Winner = &winner

	if _, err := tr.games.EndGame(ctx, game.ID); err != nil {
		return fmt.Errorf("end live game %d: %w", game.ID, err)
	}
	return nil
}

// ActivateNext promotes the tournament's next pending session to active and
// starts its game, provided the scheduling window permits it, no session is
// currently active, and the session's scheduled start has passed. It returns
// the activated session only when this caller won the conditional claim.
//
// The backing game is materialized before the claim: a losing caller's
// freshly created LiveGame is left behind unreferenced, which is acceptable
// garbage, while the deterministic host name keeps the host record itself
// deduplicated across racers. Claiming first would instead expose a window
// where an active session has no game id.
func (tr *Transitioner) ActivateNext(ctx context.Context, t *models.Tournament) (*models.TournamentSession, bool, error) {
	now := tr.now()
	if !CanActivateNow(t, now) {
		return nil, false, nil
	}

	// At most one session per tournament may be active. The check is
	// re-read fresh on every attempt rather than carried over from the
	// completion step, whose no-op result does not distinguish "no active
	// session" from "active but not yet expired".
	if _, err := tr.sessions.ActiveByTournament(ctx, t.ID); err == nil {
		return nil, false, nil
	} else if !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("check for active session: %w", err)
	}

	session, err := tr.sessions.NextPending(ctx, t.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch next pending session: %w", err)
	}
	if !session.Due(now) {
		return nil, false, nil
	}
	if !session.Status.CanTransitionTo(models.SessionActive) {
		return nil, false, nil
	}

	host, err := tr.materializeHost(ctx, t, session.SessionNumber)
	if err != nil {
		return nil, false, err
	}

	game, err := tr.games.CreateLiveGame(ctx, host.ID)
	if err != nil {
		return nil, false, fmt.Errorf("create live game for host %d: %w", host.ID, err)
	}

	claimed, err := tr.sessions.ClaimActivation(ctx, session.ID, now, game.ID)
	if err != nil {
		return nil, false, fmt.Errorf("claim activation of session %d: %w", session.ID, err)
	}
	if !claimed {
		// Another client activated the session first. Its game is the one
		// referenced by the row; ours stays an unreferenced lobby record and
		// must never be started.
		tr.logger.DebugContext(ctx, "activation claim lost, discarding live game",
			slog.Int("tournament_id", t.ID),
			slog.Int("session_id", session.ID),
			slog.Int("live_game_id", game.ID))
		return nil, false, nil
	}

	session.Status = models.SessionActive
	session.ActualStart = &now
	session.LiveGameID = &game.ID

	if _, err := tr.games.StartGame(ctx, game.ID, t.SessionDuration()); err != nil {
		return session, true, fmt.Errorf("start live game %d: %w", game.ID, err)
	}

	tr.logger.InfoContext(ctx, "session activated",
		slog.Int("tournament_id", t.ID),
		slog.Int("session_id", session.ID),
		slog.Int("session_number", session.SessionNumber),
		slog.Int("live_game_id", game.ID))
	return session, true, nil
}

// materializeHost looks up the host record for this tournament+session
// pairing by its deterministic name, creating it when absent. A create that
// loses a name race falls back to the winner's row.
func (tr *Transitioner) materializeHost(ctx context.Context, t *models.Tournament, sessionNumber int) (*models.GameHost, error) {
	name := models.GameHostName(t.ID, sessionNumber)

	host, err := tr.hosts.GetByName(ctx, name)
	if err == nil {
		return host, nil
	}
	if !errors.Is(err, repositories.ErrGameHostNotFound) {
		return nil, fmt.Errorf("lookup game host %q: %w", name, err)
	}

	host = models.NewGameHostForSession(t, sessionNumber)
	if err := tr.hosts.Create(ctx, host); err != nil {
		if errors.Is(err, repositories.ErrGameHostNameConflict) {
			return tr.hosts.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("create game host %q: %w", name, err)
	}
	return host, nil
}
