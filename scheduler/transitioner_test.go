package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionStore keeps sessions in memory with the same conditional-update
// semantics as the Postgres repository: a claim succeeds only when the row is
// still in the expected status at the moment of the write.
type fakeSessionStore struct {
	mu             sync.Mutex
	sessions       map[int]*models.TournamentSession
	setResultCalls int
}

func newFakeSessionStore(sessions ...*models.TournamentSession) *fakeSessionStore {
	store := &fakeSessionStore{sessions: make(map[int]*models.TournamentSession)}
	for _, s := range sessions {
		copied := *s
		store.sessions[s.ID] = &copied
	}
	return store
}

func (f *fakeSessionStore) get(id int) models.TournamentSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sessions[id]
}

func (f *fakeSessionStore) Create(_ context.Context, _ repositories.SQLExecutor, s *models.TournamentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = len(f.sessions) + 1
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int) (*models.TournamentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) ListByTournament(_ context.Context, tournamentID int) ([]models.TournamentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TournamentSession
	for _, s := range f.sessions {
		if s.TournamentID == tournamentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ActiveByTournament(_ context.Context, tournamentID int) (*models.TournamentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.TournamentID == tournamentID && s.Status == models.SessionActive {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (f *fakeSessionStore) NextPending(_ context.Context, tournamentID int) (*models.TournamentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var next *models.TournamentSession
	for _, s := range f.sessions {
		if s.TournamentID != tournamentID || s.Status != models.SessionPending {
			continue
		}
		if next == nil || s.SessionNumber < next.SessionNumber {
			next = s
		}
	}
	if next == nil {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *next
	return &copied, nil
}

func (f *fakeSessionStore) ClaimActivation(_ context.Context, id int, actualStart time.Time, liveGameID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.SessionPending {
		return false, nil
	}
	s.Status = models.SessionActive
	s.ActualStart = &actualStart
	s.LiveGameID = &liveGameID
	return true, nil
}

func (f *fakeSessionStore) ClaimCompletion(_ context.Context, id int, actualEnd time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.SessionActive {
		return false, nil
	}
	s.Status = models.SessionCompleted
	s.ActualEnd = &actualEnd
	return true, nil
}

func (f *fakeSessionStore) SetResult(_ context.Context, id int, team1Score, team2Score int, winner models.Winner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.Team1FinalScore = &team1Score
	s.Team2FinalScore = &team2Score
	s.Winner = &winner
	f.setResultCalls++
	return nil
}

// fakeHostStore enforces the same unique-name constraint as the game_hosts
// table.
type fakeHostStore struct {
	mu      sync.Mutex
	nextID  int
	byName  map[string]*models.GameHost
	creates int
}

func newFakeHostStore() *fakeHostStore {
	return &fakeHostStore{byName: make(map[string]*models.GameHost)}
}

func (f *fakeHostStore) Create(_ context.Context, h *models.GameHost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byName[h.Name]; exists {
		return repositories.ErrGameHostNameConflict
	}
	f.nextID++
	h.ID = f.nextID
	copied := *h
	f.byName[h.Name] = &copied
	f.creates++
	return nil
}

func (f *fakeHostStore) GetByID(_ context.Context, id int) (*models.GameHost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.byName {
		if h.ID == id {
			copied := *h
			return &copied, nil
		}
	}
	return nil, repositories.ErrGameHostNotFound
}

func (f *fakeHostStore) GetByName(_ context.Context, name string) (*models.GameHost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.byName[name]
	if !ok {
		return nil, repositories.ErrGameHostNotFound
	}
	copied := *h
	return &copied, nil
}

// fakeGameService implements LiveGameService over an in-memory map with the
// conditional start/end transitions of the real service.
type fakeGameService struct {
	mu     sync.Mutex
	nextID int
	games  map[int]*models.LiveGame
	now    func() time.Time
}

func newFakeGameService(now func() time.Time) *fakeGameService {
	return &fakeGameService{games: make(map[int]*models.LiveGame), now: now}
}

func (f *fakeGameService) CreateLiveGame(_ context.Context, hostID int) (*models.LiveGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	game := &models.LiveGame{ID: f.nextID, HostID: hostID, Status: models.GameLobby}
	f.games[game.ID] = game
	copied := *game
	return &copied, nil
}

func (f *fakeGameService) GetLiveGame(_ context.Context, id int) (*models.LiveGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrLiveGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameService) StartGame(_ context.Context, id int, duration time.Duration) (*models.LiveGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrLiveGameNotFound
	}
	if game.Status == models.GameLobby {
		now := f.now()
		endsAt := now.Add(duration)
		game.Status = models.GamePlaying
		game.StartedAt = &now
		game.EndsAt = &endsAt
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameService) EndGame(_ context.Context, id int) (*models.LiveGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrLiveGameNotFound
	}
	if game.Status != models.GameEnded {
		now := f.now()
		game.Status = models.GameEnded
		game.EndedAt = &now
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameService) setScores(id, team1, team2 int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[id].Team1Score = team1
	f.games[id].Team2Score = team2
}

func (f *fakeGameService) get(id int) models.LiveGame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.games[id]
}

func (f *fakeGameService) countByStatus(status models.LiveGameStatus) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, g := range f.games {
		if g.Status == status {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testNow is a Thursday, 12:00 in the game's UTC+2 zone.
var testNow = time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC)

func testTournament() *models.Tournament {
	return &models.Tournament{
		ID:                     1,
		Name:                   "Summer Island Conquest",
		Status:                 models.TournamentActive,
		StartDate:              testNow.Add(-24 * time.Hour),
		EndDate:                testNow.Add(7 * 24 * time.Hour),
		SessionDurationSeconds: 480,
		BreakDurationSeconds:   120,
		Team1Name:              "Red Krakens",
		Team1Color:             "#e63946",
		Team2Name:              "Blue Gulls",
		Team2Color:             "#457b9d",
		QuestionSetID:          7,
		GridSize:               8,
		TimePerQuestionSeconds: 20,
		PointsPerCorrect:       10,
	}
}

func newTestTransitioner(sessions *fakeSessionStore, hosts *fakeHostStore, games *fakeGameService) *Transitioner {
	tr := NewTransitioner(sessions, hosts, games, testLogger())
	tr.now = func() time.Time { return testNow }
	return tr
}

func TestActivateNextStartsDueSession(t *testing.T) {
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionPending,
	})
	hosts := newFakeHostStore()
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, hosts, games)

	session, won, err := tr.ActivateNext(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)
	require.NotNil(t, session)

	assert.Equal(t, models.SessionActive, session.Status)
	require.NotNil(t, session.ActualStart)
	assert.Equal(t, testNow, *session.ActualStart)
	require.NotNil(t, session.LiveGameID)

	host, err := hosts.GetByName(context.Background(), "tournament-1-session-1")
	require.NoError(t, err)
	assert.Equal(t, "Red Krakens", host.Team1Name)
	assert.Equal(t, 480, host.DurationSeconds)

	game := games.get(*session.LiveGameID)
	assert.Equal(t, models.GamePlaying, game.Status)
	require.NotNil(t, game.EndsAt)
	assert.Equal(t, testNow.Add(480*time.Second), *game.EndsAt)

	stored := sessions.get(10)
	assert.Equal(t, models.SessionActive, stored.Status)
}

func TestActivateNextNotYetDue(t *testing.T) {
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(time.Hour),
		ScheduledEnd:   testNow.Add(time.Hour + 8*time.Minute),
		Status:         models.SessionPending,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.ActivateNext(context.Background(), testTournament())
	require.NoError(t, err)
	assert.False(t, won)
	assert.Nil(t, session)
	assert.Equal(t, models.SessionPending, sessions.get(10).Status)
	assert.Empty(t, games.games)
}

func TestActivateNextOutsideSchedulingWindow(t *testing.T) {
	tournament := testTournament()
	// testNow falls on a Thursday in UTC+2.
	tournament.ExcludedDays = []int{4}

	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionPending,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	_, won, err := tr.ActivateNext(context.Background(), tournament)
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, models.SessionPending, sessions.get(10).Status)
	assert.Empty(t, games.games)
}

func TestActivateNextRefusesWhileSessionActive(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(
		// Still running: ends four minutes from now.
		&models.TournamentSession{
			ID:             10,
			TournamentID:   1,
			SessionNumber:  1,
			ScheduledStart: testNow.Add(-4 * time.Minute),
			ScheduledEnd:   testNow.Add(4 * time.Minute),
			Status:         models.SessionActive,
			LiveGameID:     &gameID,
		},
		// Overlapping slot, already due.
		&models.TournamentSession{
			ID:             11,
			TournamentID:   1,
			SessionNumber:  2,
			ScheduledStart: testNow.Add(-time.Minute),
			ScheduledEnd:   testNow.Add(7 * time.Minute),
			Status:         models.SessionPending,
		},
	)
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.ActivateNext(context.Background(), testTournament())
	require.NoError(t, err)
	assert.False(t, won)
	assert.Nil(t, session)
	assert.Empty(t, games.games)

	// At most one session per tournament is active.
	assert.Equal(t, models.SessionActive, sessions.get(10).Status)
	assert.Equal(t, models.SessionPending, sessions.get(11).Status)
	active := 0
	for id := range sessions.sessions {
		if sessions.get(id).Status == models.SessionActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestActivateNextIdempotent(t *testing.T) {
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionPending,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	_, won, err := tr.ActivateNext(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)

	// The session is active now, so a second check finds nothing pending.
	session, won, err := tr.ActivateNext(context.Background(), testTournament())
	require.NoError(t, err)
	assert.False(t, won)
	assert.Nil(t, session)
	assert.Len(t, games.games, 1)
}

func TestActivateNextConcurrentClaims(t *testing.T) {
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionPending,
	})
	hosts := newFakeHostStore()
	games := newFakeGameService(func() time.Time { return testNow })

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr := newTestTransitioner(sessions, hosts, games)
			_, won, err := tr.ActivateNext(context.Background(), testTournament())
			assert.NoError(t, err)
			if won {
				wins <- 1
			}
		}()
	}
	wg.Wait()
	close(wins)
	assert.Len(t, wins, 1, "exactly one racer should win the activation claim")

	// The unique name keeps the host deduplicated across racers.
	assert.Equal(t, 1, hosts.creates)

	// Losers leave their pre-created game behind in the lobby; only the
	// winner's game is started and referenced by the session row.
	assert.Equal(t, 1, games.countByStatus(models.GamePlaying))
	stored := sessions.get(10)
	require.NotNil(t, stored.LiveGameID)
	assert.Equal(t, models.GamePlaying, games.get(*stored.LiveGameID).Status)
}

func TestActivateNextReusesExistingHost(t *testing.T) {
	tournament := testTournament()
	hosts := newFakeHostStore()
	existing := models.NewGameHostForSession(tournament, 1)
	require.NoError(t, hosts.Create(context.Background(), existing))

	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionPending,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, hosts, games)

	_, won, err := tr.ActivateNext(context.Background(), tournament)
	require.NoError(t, err)
	require.True(t, won)
	assert.Equal(t, 1, hosts.creates)
	assert.Equal(t, existing.ID, games.get(1).HostID)
}

func TestCompleteExpiredRecordsResult(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-9 * time.Minute),
		ScheduledEnd:   testNow.Add(-time.Minute),
		Status:         models.SessionActive,
		LiveGameID:     &gameID,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	created, err := games.CreateLiveGame(context.Background(), 1)
	require.NoError(t, err)
	_, err = games.StartGame(context.Background(), created.ID, 480*time.Second)
	require.NoError(t, err)
	games.setScores(created.ID, 7, 3)

	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.CompleteExpired(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)
	require.NotNil(t, session)

	assert.Equal(t, models.SessionCompleted, session.Status)
	require.NotNil(t, session.ActualEnd)
	assert.Equal(t, testNow, *session.ActualEnd)
	require.NotNil(t, session.Winner)
	assert.Equal(t, models.WinnerTeam1, *session.Winner)
	require.NotNil(t, session.Team1FinalScore)
	assert.Equal(t, 7, *session.Team1FinalScore)
	require.NotNil(t, session.Team2FinalScore)
	assert.Equal(t, 3, *session.Team2FinalScore)

	assert.Equal(t, models.GameEnded, games.get(created.ID).Status)
}

func TestCompleteExpiredTie(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-9 * time.Minute),
		ScheduledEnd:   testNow.Add(-time.Minute),
		Status:         models.SessionActive,
		LiveGameID:     &gameID,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	created, err := games.CreateLiveGame(context.Background(), 1)
	require.NoError(t, err)
	_, err = games.StartGame(context.Background(), created.ID, 480*time.Second)
	require.NoError(t, err)
	games.setScores(created.ID, 5, 5)

	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.CompleteExpired(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)
	require.NotNil(t, session.Winner)
	assert.Equal(t, models.WinnerTie, *session.Winner)
}

func TestCompleteExpiredNotYetExpired(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-time.Minute),
		ScheduledEnd:   testNow.Add(7 * time.Minute),
		Status:         models.SessionActive,
		LiveGameID:     &gameID,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.CompleteExpired(context.Background(), testTournament())
	require.NoError(t, err)
	assert.False(t, won)
	assert.Nil(t, session)
	assert.Equal(t, models.SessionActive, sessions.get(10).Status)
}

func TestCompleteExpiredConcurrentClaims(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-9 * time.Minute),
		ScheduledEnd:   testNow.Add(-time.Minute),
		Status:         models.SessionActive,
		LiveGameID:     &gameID,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	created, err := games.CreateLiveGame(context.Background(), 1)
	require.NoError(t, err)
	_, err = games.StartGame(context.Background(), created.ID, 480*time.Second)
	require.NoError(t, err)
	games.setScores(created.ID, 4, 9)

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr := newTestTransitioner(sessions, newFakeHostStore(), games)
			_, won, err := tr.CompleteExpired(context.Background(), testTournament())
			assert.NoError(t, err)
			if won {
				wins <- 1
			}
		}()
	}
	wg.Wait()
	close(wins)
	assert.Len(t, wins, 1, "exactly one racer should win the completion claim")

	// The finalize step ran for the winner only.
	assert.Equal(t, 1, sessions.setResultCalls)
	stored := sessions.get(10)
	require.NotNil(t, stored.Winner)
	assert.Equal(t, models.WinnerTeam2, *stored.Winner)
}

func TestCompleteExpiredWithoutGame(t *testing.T) {
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-9 * time.Minute),
		ScheduledEnd:   testNow.Add(-time.Minute),
		Status:         models.SessionActive,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.CompleteExpired(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Nil(t, session.Winner)
	assert.Equal(t, 0, sessions.setResultCalls)
}

func TestCompleteExpiredSkipsUnstartedGame(t *testing.T) {
	gameID := 1
	sessions := newFakeSessionStore(&models.TournamentSession{
		ID:             10,
		TournamentID:   1,
		SessionNumber:  1,
		ScheduledStart: testNow.Add(-9 * time.Minute),
		ScheduledEnd:   testNow.Add(-time.Minute),
		Status:         models.SessionActive,
		LiveGameID:     &gameID,
	})
	games := newFakeGameService(func() time.Time { return testNow })
	_, err := games.CreateLiveGame(context.Background(), 1)
	require.NoError(t, err)

	tr := newTestTransitioner(sessions, newFakeHostStore(), games)

	session, won, err := tr.CompleteExpired(context.Background(), testTournament())
	require.NoError(t, err)
	require.True(t, won)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Nil(t, session.Winner)
	assert.Equal(t, models.GameLobby, games.get(1).Status)
}
