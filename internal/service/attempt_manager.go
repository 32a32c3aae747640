package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/julz808/educoach-prep-portal-sub001/internal/host"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

var ErrInvalidRequest = errors.New("invalid request")

type BeginRequest struct {
	UserID     string
	ProductID  string
	Mode       string
	Section    string
	Difficulty int
}

// AttemptManager owns the live attempts of this process.
type AttemptManager interface {
	// Begin resumes the user's session for the key or creates one. A Begin
	// for a key whose Begin is still running fails with ErrBeginInFlight.
	Begin(ctx context.Context, req BeginRequest) (*Attempt, error)
	// Open returns the live attempt for a session id, restoring it from the
	// store when needed. Completed sessions open in review.
	Open(ctx context.Context, sessionID string) (*Attempt, error)
	// View reads a session without resuming it. Live attempts report their
	// current state; stored ones are projected from the row.
	View(ctx context.Context, sessionID string) (SessionView, error)
	// Exit releases a live attempt. A session that is not live is left as is.
	Exit(ctx context.Context, sessionID string) error
	// BlurField flushes a pending text save of a live attempt.
	BlurField(ctx context.Context, sessionID string, index int) error
	Publish(ctx context.Context, sessionID string, ev host.Event) (int, error)
	ListSessions(ctx context.Context, userID string) ([]model.Session, error)
	Shutdown(ctx context.Context) error
}

type attemptManager struct {
	deps     attemptDeps
	provider QuestionProvider
	catalog  *catalog.Catalog

	mu     sync.Mutex
	live   map[string]*Attempt
	byKey  map[repository.SessionKey]string
	buses  map[string]*host.Bus
	guards map[repository.SessionKey]*semaphore.Weighted
}

func NewAttemptManager(
	sessions repository.SessionRepository,
	provider QuestionProvider,
	writing WritingAssessmentService,
	scoring ScoringService,
	cat *catalog.Catalog,
	clk clock.Clock,
	cfg AttemptConfig,
) AttemptManager {
	return &attemptManager{
		deps: attemptDeps{
			sessions: sessions,
			writing:  writing,
			scoring:  scoring,
			clock:    clk,
			cfg:      cfg,
		},
		provider: provider,
		catalog:  cat,
		live:     make(map[string]*Attempt),
		byKey:    make(map[repository.SessionKey]string),
		buses:    make(map[string]*host.Bus),
		guards:   make(map[repository.SessionKey]*semaphore.Weighted),
	}
}

func (m *attemptManager) Begin(ctx context.Context, req BeginRequest) (*Attempt, error) {
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.ProductID) == "" || strings.TrimSpace(req.Section) == "" {
		return nil, fmt.Errorf("%w: user_id, product_id and section are required", ErrInvalidRequest)
	}
	if req.Difficulty < 0 {
		return nil, fmt.Errorf("%w: difficulty must not be negative", ErrInvalidRequest)
	}
	key := repository.SessionKey{
		UserID:     req.UserID,
		ProductID:  req.ProductID,
		Mode:       mode,
		Section:    req.Section,
		Difficulty: req.Difficulty,
	}

	guard := m.guard(key)
	if !guard.TryAcquire(1) {
		log.Debug().Str("userID", key.UserID).Str("section", key.Section).Msg("Begin: initialization already in flight")
		return nil, ErrBeginInFlight
	}
	defer guard.Release(1)

	if a := m.liveByKey(key); a != nil {
		return a, nil
	}

	questions, err := m.provider.LoadQuestions(ctx, key.ProductID, key.Mode, key.Section, key.Difficulty)
	if err != nil {
		log.Error().Err(err).Str("userID", key.UserID).Str("productID", key.ProductID).Str("section", key.Section).
			Msg("Begin: failed to load questions")
		return nil, err
	}

	row, err := m.deps.sessions.FindResumable(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return m.create(ctx, key, questions)
	case err != nil:
		log.Error().Err(err).Str("userID", key.UserID).Msg("Begin: failed to look up existing session")
		return nil, fmt.Errorf("find session: %w", err)
	}

	ordered, err := orderByIDs(questions, row.QuestionIDs)
	if err != nil {
		ordered, err = m.provider.LoadByIDs(ctx, row.ProductID, row.QuestionIDs)
		if err != nil {
			log.Error().Err(err).Str("sessionID", row.ID).Msg("Begin: stored question set cannot be loaded")
			return nil, err
		}
	}
	return m.restore(ctx, row, ordered, StateResuming)
}

func (m *attemptManager) create(ctx context.Context, key repository.SessionKey, questions []model.Question) (*Attempt, error) {
	alloc, err := m.catalog.TimeLimit(key.ProductID, key.Section, key.Mode)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}

	id, err := m.deps.sessions.Create(ctx, key, len(questions), ids, alloc.SecondsPtr())
	if err != nil {
		log.Error().Err(err).Str("userID", key.UserID).Msg("create: failed to create session")
		return nil, fmt.Errorf("create session: %w", err)
	}
	row, err := m.deps.sessions.LoadActiveOrCompleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load created session: %w", err)
	}
	log.Info().Str("sessionID", id).Str("userID", key.UserID).Str("mode", string(key.Mode)).
		Str("section", key.Section).Int("questions", len(questions)).Msg("create: session created")

	ordered, err := orderByIDs(questions, row.QuestionIDs)
	if err != nil {
		// Another process created the row with a different question set.
		return m.restore(ctx, row, nil, StateResuming)
	}
	return m.restore(ctx, row, ordered, StateCreating)
}

// restore builds an attempt from a stored row. questions must be in the
// row's order; nil means they are loaded by id.
func (m *attemptManager) restore(ctx context.Context, row *model.Session, questions []model.Question, initial State) (*Attempt, error) {
	if questions == nil {
		var err error
		questions, err = m.provider.LoadByIDs(ctx, row.ProductID, row.QuestionIDs)
		if err != nil {
			return nil, err
		}
	}
	product, err := m.catalog.CanonicalProduct(row.ProductID)
	if err != nil {
		return nil, err
	}

	a := newAttempt(m.deps, row, product, questions)
	a.mu.Lock()
	a.transitionLocked(initial)
	a.restoreLocked(row)
	a.mu.Unlock()

	if row.Status == model.SessionStatusCompleted {
		a.enterReview(ctx)
		return a, nil
	}

	limit, err := m.timeLimitFor(row)
	if err != nil {
		return nil, err
	}
	a.timeLimit = limit
	remaining := remainingFor(row, limit)

	bus := m.register(a)
	a.activate(remaining, bus)

	if remaining != nil && *remaining == 0 {
		log.Info().Str("sessionID", a.id).Msg("restore: no time left, submitting")
		a.expire()
	}
	return a, nil
}

// timeLimitFor is the row's stored limit, or the catalog allocation for
// timed rows stored without one.
func (m *attemptManager) timeLimitFor(row *model.Session) (*int, error) {
	if row.TimeLimitSeconds != nil || !row.Mode.Timed() {
		return row.TimeLimitSeconds, nil
	}
	alloc, err := m.catalog.TimeLimit(row.ProductID, row.Section, row.Mode)
	if err != nil {
		return nil, err
	}
	return alloc.SecondsPtr(), nil
}

func (m *attemptManager) load(ctx context.Context, sessionID string) (*model.Session, error) {
	row, err := m.deps.sessions.LoadActiveOrCompleted(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return row, nil
}

func (m *attemptManager) Open(ctx context.Context, sessionID string) (*Attempt, error) {
	if a := m.liveByID(sessionID); a != nil {
		return a, nil
	}
	row, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	guard := m.guard(keyOf(row))
	if err := guard.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer guard.Release(1)

	if a := m.liveByID(sessionID); a != nil {
		return a, nil
	}
	return m.restore(ctx, row, nil, StateResuming)
}

func (m *attemptManager) View(ctx context.Context, sessionID string) (SessionView, error) {
	if a := m.liveByID(sessionID); a != nil {
		return a.Snapshot(), nil
	}
	row, err := m.load(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	questions, err := m.provider.LoadByIDs(ctx, row.ProductID, row.QuestionIDs)
	if err != nil {
		return SessionView{}, err
	}
	product, err := m.catalog.CanonicalProduct(row.ProductID)
	if err != nil {
		return SessionView{}, err
	}

	// The projection is never registered or activated: no countdown, no
	// autosave and no host events.
	a := newAttempt(m.deps, row, product, questions)
	a.mu.Lock()
	a.transitionLocked(StateResuming)
	a.restoreLocked(row)
	a.mu.Unlock()

	if row.Status == model.SessionStatusCompleted {
		a.enterReview(ctx)
		return a.Snapshot(), nil
	}

	limit, err := m.timeLimitFor(row)
	if err != nil {
		return SessionView{}, err
	}
	a.timeLimit = limit
	view := a.Snapshot()
	view.State = StateInProgress
	view.TimeRemainingSeconds = remainingFor(row, limit)
	return view, nil
}

func (m *attemptManager) Exit(ctx context.Context, sessionID string) error {
	if a := m.liveByID(sessionID); a != nil {
		return a.Exit(ctx)
	}
	if _, err := m.load(ctx, sessionID); err != nil {
		return err
	}
	log.Debug().Str("sessionID", sessionID).Msg("Exit: session is not live, nothing to release")
	return nil
}

func (m *attemptManager) BlurField(ctx context.Context, sessionID string, index int) error {
	if a := m.liveByID(sessionID); a != nil {
		return a.BlurField(ctx, index)
	}
	row, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(row.QuestionIDs) {
		return fmt.Errorf("%w: question %d of %d", ErrInvalidIndex, index, len(row.QuestionIDs))
	}
	return nil
}

func (m *attemptManager) Publish(ctx context.Context, sessionID string, ev host.Event) (int, error) {
	m.mu.Lock()
	bus, ok := m.buses[sessionID]
	m.mu.Unlock()
	if !ok {
		return 0, nil
	}
	return bus.Publish(ctx, ev), nil
}

func (m *attemptManager) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	sessions, err := m.deps.sessions.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("ListSessions: query failed")
		return nil, err
	}
	return sessions, nil
}

// Shutdown exits every live attempt, flushing their saves.
func (m *attemptManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	attempts := make([]*Attempt, 0, len(m.live))
	for _, a := range m.live {
		attempts = append(attempts, a)
	}
	m.mu.Unlock()

	var errs []error
	for _, a := range attempts {
		if err := a.Exit(ctx); err != nil {
			errs = append(errs, fmt.Errorf("exit %s: %w", a.id, err))
		}
	}
	log.Info().Int("attempts", len(attempts)).Msg("Shutdown: live attempts exited")
	return errors.Join(errs...)
}

func (m *attemptManager) register(a *Attempt) *host.Bus {
	m.mu.Lock()
	defer m.mu.Unlock()
	bus := host.NewBus()
	m.live[a.id] = a
	m.byKey[a.key] = a.id
	m.buses[a.id] = bus
	a.onClose = m.unregister
	return bus
}

func (m *attemptManager) unregister(a *Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live[a.id] == a {
		delete(m.live, a.id)
		delete(m.buses, a.id)
	}
	if m.byKey[a.key] == a.id {
		delete(m.byKey, a.key)
	}
}

func (m *attemptManager) guard(key repository.SessionKey) *semaphore.Weighted {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guards[key]
	if !ok {
		g = semaphore.NewWeighted(1)
		m.guards[key] = g
	}
	return g
}

func (m *attemptManager) liveByKey(key repository.SessionKey) *Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil
	}
	return m.live[id]
}

func (m *attemptManager) liveByID(id string) *Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[id]
}
