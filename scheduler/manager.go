package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
)

// rescanInterval is how often the manager re-reads the tournament list to
// start or stop pollers.
const rescanInterval = 30 * time.Second

// CallbacksFactory builds the callback set for one tournament's poller,
// letting the caller route transition signals (realtime broadcasts, logging)
// per tournament.
type CallbacksFactory func(tournamentID int) Callbacks

// Manager keeps one Poller running per active tournament so transitions
// still happen with zero connected clients. Admin tabs hitting the check
// endpoint remain additional, equally-privileged pollers; the conditional
// writes make the overlap safe.
type Manager struct {
	tournaments  repositories.TournamentRepository
	transitioner *Transitioner
	callbacks    CallbacksFactory
	logger       *slog.Logger

	mu      sync.Mutex
	running map[int]context.CancelFunc
}

func NewManager(
	tournaments repositories.TournamentRepository,
	transitioner *Transitioner,
	callbacks CallbacksFactory,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		tournaments:  tournaments,
		transitioner: transitioner,
		callbacks:    callbacks,
		logger:       logger,
		running:      make(map[int]context.CancelFunc),
	}
}

// Run rescans immediately and then on a fixed interval, blocking until ctx
// is cancelled. On cancellation all pollers are stopped.
func (m *Manager) Run(ctx context.Context) error {
	m.rescan(ctx)

	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.stopAll()
			return ctx.Err()
		case <-ticker.C:
			m.rescan(ctx)
		}
	}
}

func (m *Manager) rescan(ctx context.Context) {
	status := models.TournamentActive
	active, err := m.tournaments.List(ctx, repositories.ListTournamentsFilter{Status: &status})
	if err != nil {
		m.logger.ErrorContext(ctx, "scheduler rescan failed", slog.Any("error", err))
		return
	}

	wanted := make(map[int]bool, len(active))
	for _, t := range active {
		wanted[t.ID] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, cancel := range m.running {
		if !wanted[id] {
			cancel()
			delete(m.running, id)
			m.logger.Info("poller stopped", slog.Int("tournament_id", id))
		}
	}

	for id := range wanted {
		if _, ok := m.running[id]; ok {
			continue
		}
		pollerCtx, cancel := context.WithCancel(ctx)
		m.running[id] = cancel

		poller := NewPoller(id, m.tournaments, m.transitioner, m.callbacks(id), m.logger)
		go poller.Run(pollerCtx)
		m.logger.Info("poller started", slog.Int("tournament_id", id))
	}
}

func (m *Manager) stopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cancel := range m.running {
		cancel()
		delete(m.running, id)
	}
}
