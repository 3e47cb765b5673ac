package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
)

const (
	// pollInterval is how often a running poller re-evaluates transitions.
	pollInterval = 5 * time.Second
	// debounceWindow suppresses checks that start too soon after the
	// previous check's start, bounding work under bursty callers.
	debounceWindow = 4 * time.Second
)

// Callbacks are caller-supplied side effects fired synchronously after a
// successful transition. They are fire-and-forget from the scheduler's point
// of view and must not block for long or panic.
type Callbacks struct {
	// OnSessionActivated fires after this poller wins an activation claim.
	OnSessionActivated func(*models.TournamentSession)
	// OnSessionCompleted fires after this poller wins a completion claim.
	OnSessionCompleted func(*models.TournamentSession)
	// OnSessionsChanged fires after any successful transition, signalling
	// the caller to refresh its session list.
	OnSessionsChanged func()
}

// Poller is the recurring transition check for one tournament. Any number of
// pollers for the same tournament may run concurrently (the manager's
// resident one plus one per client poking the check endpoint); correctness
// relies entirely on the Transitioner's conditional writes, so the poller's
// debounce and reentrancy guard are purely a cost bound, not a correctness
// mechanism.
type Poller struct {
	tournamentID int
	tournaments  repositories.TournamentRepository
	transitioner *Transitioner
	callbacks    Callbacks
	logger       *slog.Logger
	now          func() time.Time

	mu             sync.Mutex
	inFlight       bool
	lastCheckStart time.Time
}

func NewPoller(
	tournamentID int,
	tournaments repositories.TournamentRepository,
	transitioner *Transitioner,
	callbacks Callbacks,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		tournamentID: tournamentID,
		tournaments:  tournaments,
		transitioner: transitioner,
		callbacks:    callbacks,
		logger:       logger.With(slog.Int("tournament_id", tournamentID)),
		now:          time.Now,
	}
}

// Run checks immediately, then on a fixed interval until ctx is cancelled.
// A failed check never stops the loop; the next tick retries.
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check performs one debounced transition check. It is safe to call from any
// goroutine at any rate: a check already in flight, or one starting less
// than the debounce window after the previous check's start, is a no-op.
// Failures are logged and swallowed.
func (p *Poller) Check(ctx context.Context) {
	p.mu.Lock()
	now := p.now()
	if p.inFlight || now.Sub(p.lastCheckStart) < debounceWindow {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.lastCheckStart = now
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	if err := p.check(ctx); err != nil {
		p.logger.ErrorContext(ctx, "transition check failed", slog.Any("error", err))
	}
}

// check runs completion before activation, so a session can never be
// completed and reactivated within the same tick, and activation always sees
// a fresh answer to "is any session active".
func (p *Poller) check(ctx context.Context) error {
	tournament, err := p.tournaments.GetByID(ctx, p.tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil
		}
		return err
	}
	if tournament.Status != models.TournamentActive {
		return nil
	}

	completed, won, err := p.transitioner.CompleteExpired(ctx, tournament)
	if won {
		p.notifyCompleted(completed)
	}
	if err != nil {
		return err
	}

	activated, won, err := p.transitioner.ActivateNext(ctx, tournament)
	if won {
		p.notifyActivated(activated)
	}
	return err
}

func (p *Poller) notifyCompleted(session *models.TournamentSession) {
	if p.callbacks.OnSessionCompleted != nil {
		p.callbacks.OnSessionCompleted(session)
	}
	if p.callbacks.OnSessionsChanged != nil {
		p.callbacks.OnSessionsChanged()
	}
}

func (p *Poller) notifyActivated(session *models.TournamentSession) {
	if p.callbacks.OnSessionActivated != nil {
		p.callbacks.OnSessionActivated(session)
	}
	if p.callbacks.OnSessionsChanged != nil {
		p.callbacks.OnSessionsChanged()
	}
}
