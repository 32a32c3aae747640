package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/autosave"
	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/julz808/educoach-prep-portal-sub001/internal/host"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/reconcile"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/julz808/educoach-prep-portal-sub001/internal/timer"
	"github.com/rs/zerolog/log"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateCreating      State = "creating"
	StateResuming      State = "resuming"
	StateInProgress    State = "in-progress"
	StateReview        State = "review"
	StateCompleted     State = "completed"
)

var allowedTransitions = map[State][]State{
	StateUninitialized: {StateCreating, StateResuming},
	StateCreating:      {StateInProgress},
	StateResuming:      {StateInProgress, StateReview},
	StateInProgress:    {StateCompleted, StateReview},
}

type AttemptConfig struct {
	Autosave      autosave.Config
	UnloadTimeout time.Duration
	// ExpireRetry is the wait before a failed timeout submission is tried again.
	ExpireRetry time.Duration
}

func DefaultAttemptConfig() AttemptConfig {
	return AttemptConfig{
		Autosave:      autosave.DefaultConfig(),
		UnloadTimeout: 2 * time.Second,
		ExpireRetry:   5 * time.Second,
	}
}

type attemptDeps struct {
	sessions repository.SessionRepository
	writing  WritingAssessmentService
	scoring  ScoringService
	clock    clock.Clock
	cfg      AttemptConfig
}

// Attempt is the single writer of one session's state. Background work
// (autosave timers, the countdown, host events) re-enters through its methods.
type Attempt struct {
	deps      attemptDeps
	id        string
	key       repository.SessionKey
	product   string
	questions []model.Question
	options   [][]string
	timeLimit *int
	createdAt time.Time
	autosave  *autosave.Scheduler

	finalizeMu sync.Mutex

	mu         sync.Mutex
	state      State
	history    []State
	answers    map[int]int
	text       map[int]string
	flagged    map[int]bool
	current    int
	countdown  *timer.Countdown
	finalizing bool
	expired    bool
	retry      clock.Timer
	closed     bool
	grades     map[string]model.WritingGrade
	grading    GradingProgress

	shutdownOnce sync.Once
	unsubscribe  func()
	onClose      func(*Attempt)
}

func newAttempt(deps attemptDeps, row *model.Session, product string, questions []model.Question) *Attempt {
	options := make([][]string, len(questions))
	for i := range questions {
		options[i] = questions[i].Options
	}
	a := &Attempt{
		deps:      deps,
		id:        row.ID,
		key:       keyOf(row),
		product:   product,
		questions: questions,
		options:   options,
		timeLimit: row.TimeLimitSeconds,
		createdAt: row.CreatedAt,
		state:     StateUninitialized,
		history:   []State{StateUninitialized},
		answers:   make(map[int]int),
		text:      make(map[int]string),
		flagged:   make(map[int]bool),
	}
	saveCfg := deps.cfg.Autosave
	saveCfg.Heartbeat = row.TimeLimitSeconds != nil
	a.autosave = autosave.New(row.ID, saveCfg, deps.clock, a.persist)
	return a
}

func keyOf(row *model.Session) repository.SessionKey {
	return repository.SessionKey{
		UserID:     row.UserID,
		ProductID:  row.ProductID,
		Mode:       row.Mode,
		Section:    row.Section,
		Difficulty: row.Difficulty,
	}
}

func (a *Attempt) ID() string { return a.id }

func (a *Attempt) Key() repository.SessionKey { return a.key }

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History lists every state the attempt has been in, oldest first.
func (a *Attempt) History() []State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]State(nil), a.history...)
}

func (a *Attempt) transitionLocked(to State) {
	for _, allowed := range allowedTransitions[a.state] {
		if allowed == to {
			a.state = to
			a.history = append(a.history, to)
			return
		}
	}
	panic(fmt.Sprintf("attempt %s: illegal transition %s -> %s", a.id, a.state, to))
}

// restoreLocked loads stored progress into memory. Answers go through
// reconciliation since option text may have changed since they were saved.
func (a *Attempt) restoreLocked(row *model.Session) {
	answers, mismatches := reconcile.Rehydrate(row.Answers, a.options)
	for _, m := range mismatches {
		log.Warn().Str("sessionID", a.id).Str("position", m.Key).Interface("stored", m.Stored).
			Str("reason", m.Reason).Msg("restore: stored answer left unanswered")
	}
	a.answers = answers

	for k, v := range row.TextAnswers.Data() {
		pos, err := strconv.Atoi(k)
		if err != nil || pos < 0 || pos >= len(a.questions) {
			log.Warn().Str("sessionID", a.id).Str("position", k).Msg("restore: dropping text answer with invalid position")
			continue
		}
		a.text[pos] = v
	}
	for _, f := range row.Flagged {
		if f >= 0 && int(f) < len(a.questions) {
			a.flagged[int(f)] = true
		}
	}
	if row.CurrentIndex >= 0 && row.CurrentIndex < len(a.questions) {
		a.current = row.CurrentIndex
	}
}

// remainingFor picks the resume countdown value: the stored remaining time,
// never more than the limit.
func remainingFor(row *model.Session, limit *int) *int {
	if limit == nil {
		return nil
	}
	r := *limit
	if row.TimeRemainingSeconds != nil && *row.TimeRemainingSeconds < r {
		r = *row.TimeRemainingSeconds
	}
	if r < 0 {
		r = 0
	}
	return &r
}

// activate enters in-progress and starts background work.
func (a *Attempt) activate(remaining *int, bus host.Lifecycle) {
	a.mu.Lock()
	a.transitionLocked(StateInProgress)
	if remaining != nil {
		a.countdown = timer.NewCountdown(*remaining, a.deps.clock, a.expire)
	}
	countdown := a.countdown
	a.mu.Unlock()

	if bus != nil {
		a.unsubscribe = bus.Subscribe(a.onHostEvent)
	}
	a.autosave.Start()
	if countdown != nil && countdown.Remaining() > 0 {
		countdown.Start()
	}
}

// enterReview projects a completed session read-only.
func (a *Attempt) enterReview(ctx context.Context) {
	a.mu.Lock()
	a.transitionLocked(StateReview)
	a.mu.Unlock()
	a.autosave.Stop()
	if _, err := a.completedScore(ctx); err != nil {
		log.Warn().Err(err).Str("sessionID", a.id).Msg("enterReview: score unavailable")
	}
}

func (a *Attempt) mutableLocked() error {
	switch {
	case a.state == StateReview || a.state == StateCompleted:
		return ErrReadOnly
	case a.closed:
		return ErrAttemptClosed
	case a.expired:
		return ErrTimeExpired
	case a.state != StateInProgress || a.finalizing:
		return ErrNotInProgress
	}
	return nil
}

func (a *Attempt) checkPosition(i int) error {
	if i < 0 || i >= len(a.questions) {
		return fmt.Errorf("%w: question %d of %d", ErrInvalidIndex, i, len(a.questions))
	}
	return nil
}

// Answer selects option opt for multiple-choice question i and saves at once.
func (a *Attempt) Answer(ctx context.Context, i, opt int) error {
	if err := a.checkPosition(i); err != nil {
		return err
	}
	if a.questions[i].IsFreeText() || opt < 0 || opt >= len(a.options[i]) {
		return fmt.Errorf("%w: option %d for question %d", ErrInvalidIndex, opt, i)
	}
	a.mu.Lock()
	if err := a.mutableLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.answers[i] = opt
	a.mu.Unlock()

	a.autosave.Fire(ctx)
	return nil
}

// SetText replaces the free-text answer of question i. The save is debounced.
func (a *Attempt) SetText(ctx context.Context, i int, text string) error {
	if err := a.checkPosition(i); err != nil {
		return err
	}
	if !a.questions[i].IsFreeText() {
		return fmt.Errorf("%w: question %d is not free text", ErrInvalidIndex, i)
	}
	a.mu.Lock()
	if err := a.mutableLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.text[i] = text
	a.mu.Unlock()

	a.autosave.Touch(i)
	return nil
}

// BlurField flushes question i's pending text save.
func (a *Attempt) BlurField(ctx context.Context, i int) error {
	if err := a.checkPosition(i); err != nil {
		return err
	}
	if !a.isActive() {
		return nil
	}
	_ = a.autosave.Flush(ctx, i)
	return nil
}

func (a *Attempt) Flag(ctx context.Context, i int) error {
	return a.setFlag(ctx, i, true)
}

func (a *Attempt) Unflag(ctx context.Context, i int) error {
	return a.setFlag(ctx, i, false)
}

func (a *Attempt) setFlag(ctx context.Context, i int, on bool) error {
	if err := a.checkPosition(i); err != nil {
		return err
	}
	a.mu.Lock()
	if err := a.mutableLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	if on {
		a.flagged[i] = true
	} else {
		delete(a.flagged, i)
	}
	a.mu.Unlock()

	a.autosave.Fire(ctx)
	return nil
}

// Seek moves to question i, flushing every pending save first.
func (a *Attempt) Seek(ctx context.Context, i int) error {
	if err := a.checkPosition(i); err != nil {
		return err
	}
	a.mu.Lock()
	if a.state == StateReview {
		a.current = i
		a.mu.Unlock()
		return nil
	}
	if err := a.mutableLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.current = i
	a.mu.Unlock()

	a.autosave.Wait()
	_ = a.autosave.Sync(ctx)
	return nil
}

// Submit finalizes the attempt. Submitting a completed attempt returns its
// score again without re-grading. Once time is up no confirmation is needed.
func (a *Attempt) Submit(ctx context.Context, confirmed bool) (Score, error) {
	a.mu.Lock()
	done := a.state == StateCompleted || a.state == StateReview
	expired := a.expired
	a.mu.Unlock()
	if done {
		return a.completedScore(ctx)
	}
	if !confirmed && !expired {
		return Score{}, ErrConfirmationRequired
	}
	return a.finalize(ctx, "submit")
}

// expire submits on timeout. The attempt stays closed to edits from here on,
// even when the submission fails and has to be retried.
func (a *Attempt) expire() {
	a.mu.Lock()
	if a.state != StateInProgress || a.closed {
		a.mu.Unlock()
		return
	}
	a.expired = true
	a.retry = nil
	a.mu.Unlock()

	log.Info().Str("sessionID", a.id).Msg("expire: time limit reached, submitting")
	if _, err := a.finalize(context.Background(), "timeout"); err != nil {
		log.Error().Err(err).Str("sessionID", a.id).Msg("expire: finalization failed")
	}
}

// finalize runs flush, grade, score and complete, strictly in that order.
func (a *Attempt) finalize(ctx context.Context, reason string) (Score, error) {
	a.finalizeMu.Lock()
	defer a.finalizeMu.Unlock()

	a.mu.Lock()
	switch {
	case a.state == StateCompleted || a.state == StateReview:
		a.mu.Unlock()
		return a.completedScore(ctx)
	case a.closed:
		a.mu.Unlock()
		return Score{}, ErrAttemptClosed
	case a.state != StateInProgress:
		a.mu.Unlock()
		return Score{}, ErrNotInProgress
	}
	a.finalizing = true
	countdown := a.countdown
	a.mu.Unlock()

	if countdown != nil {
		countdown.Stop()
	}
	log.Info().Str("sessionID", a.id).Str("reason", reason).Msg("finalize: submitting attempt")

	a.autosave.Wait()
	if err := a.autosave.FlushAll(ctx); err != nil {
		log.Warn().Err(err).Str("sessionID", a.id).Msg("finalize: flush failed, completing with in-memory state")
	}

	a.mu.Lock()
	answers, text := a.copyAnswersLocked()
	a.mu.Unlock()

	grades, err := a.deps.writing.GradeSession(ctx, GradeSessionInput{
		SessionID:   a.id,
		UserID:      a.key.UserID,
		Product:     a.product,
		Questions:   a.questions,
		TextAnswers: text,
	}, a.setGradingProgress)
	if err != nil {
		a.abortFinalize()
		return Score{}, err
	}

	score := a.deps.scoring.Score(a.questions, answers, text, grades)

	if err := a.deps.sessions.Complete(ctx, a.id, reconcile.Encode(answers, a.options), textToStored(text)); err != nil {
		log.Error().Err(err).Str("sessionID", a.id).Msg("finalize: failed to mark session completed")
		a.abortFinalize()
		return Score{}, fmt.Errorf("complete session: %w", err)
	}

	a.mu.Lock()
	a.transitionLocked(StateCompleted)
	a.finalizing = false
	a.grades = grades
	a.mu.Unlock()

	a.shutdown()
	log.Info().Str("sessionID", a.id).Float64("earned", score.EarnedPoints).Float64("max", score.TotalMaxPoints).
		Int("percentage", score.Percentage).Msg("finalize: attempt completed")
	return score, nil
}

// abortFinalize returns to in-progress after a failed finalization, resuming
// the countdown from where it stopped. An expired attempt schedules another
// submission instead.
func (a *Attempt) abortFinalize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finalizing = false
	if a.expired {
		if a.closed || a.retry != nil {
			return
		}
		delay := a.deps.cfg.ExpireRetry
		if delay <= 0 {
			delay = DefaultAttemptConfig().ExpireRetry
		}
		log.Warn().Str("sessionID", a.id).Dur("retryIn", delay).Msg("abortFinalize: timeout submission failed, retrying")
		a.retry = a.deps.clock.AfterFunc(delay, a.expire)
		return
	}
	if a.countdown != nil && a.countdown.Remaining() > 0 {
		a.countdown = timer.NewCountdown(a.countdown.Remaining(), a.deps.clock, a.expire)
		a.countdown.Start()
	}
}

// completedScore recomputes the score from stored grades.
func (a *Attempt) completedScore(ctx context.Context) (Score, error) {
	a.mu.Lock()
	answers, text := a.copyAnswersLocked()
	grades := a.grades
	a.mu.Unlock()

	stored, err := a.deps.writing.Grades(ctx, a.id)
	switch {
	case err == nil:
		grades = stored
	case grades == nil:
		return Score{}, fmt.Errorf("load writing grades: %w", err)
	default:
		log.Warn().Err(err).Str("sessionID", a.id).Msg("completedScore: using grades from this process")
	}

	a.mu.Lock()
	a.grades = grades
	a.mu.Unlock()
	return a.deps.scoring.Score(a.questions, answers, text, grades), nil
}

// Exit flushes pending saves and releases background work. It is a no-op in
// review and after completion.
func (a *Attempt) Exit(ctx context.Context) error {
	a.finalizeMu.Lock()
	defer a.finalizeMu.Unlock()

	a.mu.Lock()
	if a.closed || a.state != StateInProgress {
		a.closed = true
		a.mu.Unlock()
		a.shutdown()
		return nil
	}
	a.closed = true
	countdown := a.countdown
	a.mu.Unlock()

	if countdown != nil {
		countdown.Stop()
	}
	a.autosave.Wait()
	if err := a.autosave.Sync(ctx); err != nil {
		log.Warn().Err(err).Str("sessionID", a.id).Msg("Exit: final save failed")
	}
	a.shutdown()
	return nil
}

func (a *Attempt) shutdown() {
	a.shutdownOnce.Do(func() {
		a.mu.Lock()
		countdown := a.countdown
		retry := a.retry
		a.retry = nil
		a.mu.Unlock()
		if countdown != nil {
			countdown.Stop()
		}
		if retry != nil {
			retry.Stop()
		}
		a.autosave.Stop()
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		if a.onClose != nil {
			a.onClose(a)
		}
	})
}

func (a *Attempt) onHostEvent(ctx context.Context, ev host.Event) {
	if !a.isActive() {
		return
	}
	var err error
	switch ev {
	case host.EventUnload:
		uctx, cancel := context.WithTimeout(ctx, a.deps.cfg.UnloadTimeout)
		defer cancel()
		if err = a.autosave.Sync(uctx); err != nil {
			log.Warn().Err(err).Str("sessionID", a.id).Msg("onHostEvent: unload flush failed")
		}
		return
	case host.EventHidden, host.EventBlur:
		err = a.autosave.FlushAll(ctx)
	case host.EventVisible, host.EventFocus:
		err = a.autosave.Tick(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Str("sessionID", a.id).Str("event", string(ev)).Msg("onHostEvent: flush failed")
	}
}

func (a *Attempt) isActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateInProgress && !a.closed
}

// persist is the autosave SaveFunc: it writes the latest in-memory state.
func (a *Attempt) persist(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateInProgress {
		a.mu.Unlock()
		return nil
	}
	answers, text := a.copyAnswersLocked()
	progress := repository.Progress{
		CurrentIndex:  a.current,
		Answers:       reconcile.Encode(answers, a.options),
		Flagged:       a.flaggedLocked(),
		TimeRemaining: a.remainingLocked(),
		TextAnswers:   textToStored(text),
	}
	a.mu.Unlock()

	if err := a.deps.sessions.SaveProgress(ctx, a.id, progress); err != nil {
		log.Warn().Err(err).Str("sessionID", a.id).Msg("persist: save failed, will retry on next trigger")
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (a *Attempt) setGradingProgress(p GradingProgress) {
	a.mu.Lock()
	a.grading = p
	a.mu.Unlock()
	log.Info().Str("sessionID", a.id).Msg(p.Message())
}

func (a *Attempt) GradingStatus() GradingProgress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.grading
}

// TimeRemaining is nil for untimed attempts.
func (a *Attempt) TimeRemaining() *int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remainingLocked()
}

func (a *Attempt) remainingLocked() *int {
	if a.countdown == nil {
		return nil
	}
	r := a.countdown.Remaining()
	return &r
}

func (a *Attempt) flaggedLocked() []int {
	out := make([]int, 0, len(a.flagged))
	for i := range a.flagged {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (a *Attempt) copyAnswersLocked() (map[int]int, map[int]string) {
	answers := make(map[int]int, len(a.answers))
	for k, v := range a.answers {
		answers[k] = v
	}
	text := make(map[int]string, len(a.text))
	for k, v := range a.text {
		text[k] = v
	}
	return answers, text
}

func textToStored(text map[int]string) map[string]string {
	out := make(map[string]string, len(text))
	for k, v := range text {
		out[strconv.Itoa(k)] = v
	}
	return out
}
