package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hexisle/island-conquest/repositories"
)

// CheckRegistry hands out one shared Poller per tournament for on-demand
// checks triggered over HTTP. Sharing the poller means all admin tabs
// hammering the check endpoint share a single debounce window, on top of the
// conditional-write safety underneath.
type CheckRegistry struct {
	tournaments  repositories.TournamentRepository
	transitioner *Transitioner
	callbacks    CallbacksFactory
	logger       *slog.Logger

	mu      sync.Mutex
	pollers map[int]*Poller
}

func NewCheckRegistry(
	tournaments repositories.TournamentRepository,
	transitioner *Transitioner,
	callbacks CallbacksFactory,
	logger *slog.Logger,
) *CheckRegistry {
	return &CheckRegistry{
		tournaments:  tournaments,
		transitioner: transitioner,
		callbacks:    callbacks,
		logger:       logger,
		pollers:      make(map[int]*Poller),
	}
}

// Check runs one debounced transition check for the tournament in the
// background. The check outlives the triggering request on purpose: a
// transition, once started, should not be abandoned because the admin tab
// closed the connection.
func (r *CheckRegistry) Check(ctx context.Context, tournamentID int) {
	r.mu.Lock()
	poller, ok := r.pollers[tournamentID]
	if !ok {
		poller = NewPoller(tournamentID, r.tournaments, r.transitioner, r.callbacks(tournamentID), r.logger)
		r.pollers[tournamentID] = poller
	}
	r.mu.Unlock()

	go poller.Check(context.WithoutCancel(ctx))
}
