// Package session hosts games behind string IDs. Records live in Redis, the
// computer's reply is a cancellable deferred task, and finished games are
// handed to a result repository and notifier.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultComputerDelay = 500 * time.Millisecond
	backgroundTimeout    = 5 * time.Second
	subscriberBuffer     = 8
)

type Manager struct {
	store    *Store
	results  ResultRepository
	notifier Notifier
	delay    time.Duration
	logger   *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand

	mu      sync.Mutex
	closed  bool
	pending map[string]*pendingReply
	subs    map[string]map[int]chan Record
	nextSub int
	wg      sync.WaitGroup
}

type pendingReply struct {
	timer   *time.Timer
	version int64
}

type Option func(*Manager)

func WithResults(r ResultRepository) Option { return func(m *Manager) { m.results = r } }

func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }

// WithComputerDelay sets the pause before the computer replies. Negative
// values are treated as zero.
func WithComputerDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d < 0 {
			d = 0
		}
		m.delay = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSeed makes the computer's choices reproducible.
func WithSeed(seed int64) Option {
	return func(m *Manager) { m.rand = rand.New(rand.NewSource(seed)) }
}

func NewManager(store *Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		delay:   defaultComputerDelay,
		logger:  zap.NewNop(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		pending: make(map[string]*pendingReply),
		subs:    make(map[string]map[int]chan Record),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) random() *rand.Rand {
	m.randMu.Lock()
	seed := m.rand.Int63()
	m.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (m *Manager) restore(rec *Record) *game.Game {
	return game.Restore(rec.State,
		game.WithComputer(rec.Computer),
		game.WithPolicy(rec.Policy),
		game.WithRand(m.random()),
		game.WithLogger(m.logger.With(zap.String("session_id", rec.ID))),
	)
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Create starts a new session and schedules the computer if it opens.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Record, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	state := game.InitialState()
	if fen := strings.TrimSpace(opts.FEN); fen != "" {
		b, turn, err := engine.FromFEN(fen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
		state.Board = b
		state.Turn = turn
	}
	now := time.Now()
	rec := &Record{
		ID:        uuid.NewString(),
		GameID:    uuid.NewString(),
		Computer:  opts.Computer,
		Policy:    opts.Policy,
		State:     state,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	m.logger.Info("session_create",
		zap.String("session_id", rec.ID),
		zap.String("computer", rec.Computer.String()),
		zap.String("policy", rec.Policy.String()),
	)
	m.afterChange(rec, false)
	return rec.clone(), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	return m.store.Load(ctx, id)
}

// humanGuard refuses human input on the computer's turn. A finished game
// passes through so the command is simply not applied.
func humanGuard(g *game.Game) error {
	if g.GameOver() {
		return nil
	}
	if g.Computer() != engine.NoColor && g.Turn() == g.Computer() {
		return ErrComputerTurn
	}
	return nil
}

// mutate runs fn against a restored game inside a store transaction. The
// record is written back when fn applied a change or the pending selection moved.
func (m *Manager) mutate(ctx context.Context, id string, fn func(g *game.Game) (bool, error)) (*Record, bool, error) {
	if m.isClosed() {
		return nil, false, ErrClosed
	}
	var prevOver, applied bool
	rec, changed, err := m.store.Update(ctx, id, func(rec *Record) error {
		prevOver = rec.State.GameOver
		before := rec.State.Selected
		g := m.restore(rec)
		ok, err := fn(g)
		if err != nil {
			return err
		}
		applied = ok
		after, hasAfter := g.Selected()
		if !ok && sameSelection(before, after, hasAfter) {
			return errNoChange
		}
		rec.State = g.State()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if changed {
		m.afterChange(rec, prevOver)
	}
	return rec.clone(), applied, nil
}

func sameSelection(before *engine.Square, after engine.Square, hasAfter bool) bool {
	if before == nil {
		return !hasAfter
	}
	return hasAfter && *before == after
}

// Select records sq as the pending source square. The bool reports whether
// the selection was accepted.
func (m *Manager) Select(ctx context.Context, id string, sq engine.Square) (*Record, bool, error) {
	return m.mutate(ctx, id, func(g *game.Game) (bool, error) {
		if err := humanGuard(g); err != nil {
			return false, err
		}
		return g.BeginSelection(sq), nil
	})
}

// Move drops the selected piece on dest.
func (m *Manager) Move(ctx context.Context, id string, dest engine.Square) (*Record, bool, error) {
	rec, ok, err := m.mutate(ctx, id, func(g *game.Game) (bool, error) {
		if err := humanGuard(g); err != nil {
			return false, err
		}
		return g.AttemptMove(dest), nil
	})
	m.logMove(rec, ok, err)
	return rec, ok, err
}

// MoveFrom selects from and moves it to to in one step.
func (m *Manager) MoveFrom(ctx context.Context, id string, from, to engine.Square) (*Record, bool, error) {
	rec, ok, err := m.mutate(ctx, id, func(g *game.Game) (bool, error) {
		if err := humanGuard(g); err != nil {
			return false, err
		}
		return g.Move(from, to), nil
	})
	m.logMove(rec, ok, err)
	return rec, ok, err
}

func (m *Manager) logMove(rec *Record, ok bool, err error) {
	if err != nil || rec == nil {
		return
	}
	if !ok {
		m.logger.Debug("session_move_rejected", zap.String("session_id", rec.ID))
		return
	}
	last := ""
	if n := len(rec.State.History); n > 0 {
		last = rec.State.History[n-1].Notation()
	}
	m.logger.Info("session_move",
		zap.String("session_id", rec.ID),
		zap.String("move", last),
		zap.String("turn", rec.State.Turn.String()),
		zap.Bool("game_over", rec.State.GameOver),
		zap.String("winner", rec.State.Winner.String()),
	)
}

// DismissGameOver lets play continue after a game-ending check.
func (m *Manager) DismissGameOver(ctx context.Context, id string) (*Record, error) {
	rec, _, err := m.mutate(ctx, id, func(g *game.Game) (bool, error) {
		if !g.GameOver() {
			return false, nil
		}
		g.DismissGameOver()
		return true, nil
	})
	return rec, err
}

// Reset replaces the game with the initial position under a fresh game ID
// and cancels any pending computer reply.
func (m *Manager) Reset(ctx context.Context, id string) (*Record, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	m.cancelPending(id)
	rec, _, err := m.store.Update(ctx, id, func(rec *Record) error {
		now := time.Now()
		rec.State = game.InitialState()
		rec.GameID = uuid.NewString()
		rec.CreatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("session_reset", zap.String("session_id", rec.ID), zap.String("game_id", rec.GameID))
	m.afterChange(rec, false)
	return rec.clone(), nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.cancelPending(id)
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	for key, ch := range m.subs[id] {
		close(ch)
		delete(m.subs[id], key)
	}
	delete(m.subs, id)
	m.mu.Unlock()
	m.logger.Info("session_delete", zap.String("session_id", id))
	return nil
}

// RecentResults lists finished games from the result repository.
func (m *Manager) RecentResults(ctx context.Context, limit int) ([]*Result, error) {
	if m.results == nil {
		return []*Result{}, nil
	}
	return m.results.RecentResults(ctx, limit)
}

// Subscribe streams every committed record of session id. The channel is
// closed by cancel, by Delete and by Close. Slow readers miss updates.
func (m *Manager) Subscribe(id string) (<-chan Record, func()) {
	ch := make(chan Record, subscriberBuffer)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.nextSub++
	key := m.nextSub
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan Record)
	}
	m.subs[id][key] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id][key]; ok {
				close(c)
				delete(m.subs[id], key)
				if len(m.subs[id]) == 0 {
					delete(m.subs, id)
				}
			}
		})
	}
}

func (m *Manager) publish(rec *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[rec.ID] {
		select {
		case ch <- *rec.clone():
		default:
			m.logger.Warn("session_subscriber_lagging", zap.String("session_id", rec.ID))
		}
	}
}

// afterChange runs once per committed write.
func (m *Manager) afterChange(rec *Record, prevOver bool) {
	if !prevOver && rec.State.GameOver {
		m.finish(rec)
	}
	m.publish(rec)
	m.reconcile(rec)
}

// reconcile schedules or cancels the computer reply for rec. A record older
// than the pending reply leaves it in place.
func (m *Manager) reconcile(rec *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pending[rec.ID]; ok && p.version > rec.Version {
		return
	}
	if rec.Computer != engine.NoColor && !rec.State.GameOver && rec.State.Turn == rec.Computer {
		m.scheduleLocked(rec.ID, rec.Version)
		return
	}
	m.stopLocked(rec.ID)
}

func (m *Manager) scheduleLocked(id string, version int64) {
	if m.closed {
		return
	}
	m.stopLocked(id)
	m.wg.Add(1)
	p := &pendingReply{version: version}
	p.timer = time.AfterFunc(m.delay, func() { m.runComputer(id, p) })
	m.pending[id] = p
}

func (m *Manager) cancelPending(id string) {
	m.mu.Lock()
	m.stopLocked(id)
	m.mu.Unlock()
}

func (m *Manager) stopLocked(id string) {
	p, ok := m.pending[id]
	if !ok {
		return
	}
	if p.timer.Stop() {
		m.wg.Done()
	}
	delete(m.pending, id)
}

func (m *Manager) runComputer(id string, p *pendingReply) {
	defer m.wg.Done()
	m.mu.Lock()
	if m.pending[id] == p {
		delete(m.pending, id)
	}
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	var (
		prevOver bool
		played   engine.Move
		moved    bool
	)
	rec, changed, err := m.store.Update(ctx, id, func(rec *Record) error {
		if rec.Version != p.version {
			return errNoChange
		}
		g := m.restore(rec)
		if !g.ComputerToMove() {
			return errNoChange
		}
		prevOver = rec.State.GameOver
		played, moved = g.ComputerMove()
		rec.State = g.State()
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Warn("computer_move_error", zap.String("session_id", id), zap.Error(err))
		}
		return
	}
	if !changed {
		m.logger.Debug("computer_move_skipped", zap.String("session_id", id), zap.Int64("version", p.version))
		return
	}
	if moved {
		m.logger.Info("computer_move",
			zap.String("session_id", id),
			zap.String("move", played.String()),
			zap.Bool("game_over", rec.State.GameOver),
		)
	}
	m.afterChange(rec, prevOver)
}

func (m *Manager) finish(rec *Record) {
	res := resultFrom(rec)
	m.logger.Info("game_finished",
		zap.String("session_id", res.SessionID),
		zap.String("game_id", res.GameID),
		zap.String("winner", res.Winner.String()),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("plies", len(res.Moves)),
	)
	if m.results != nil {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		if err := m.results.SaveResult(ctx, res); err != nil {
			m.logger.Error("result_persist_error", zap.String("game_id", res.GameID), zap.Error(err))
		}
		cancel()
	}
	if m.notifier == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := m.notifier.GameFinished(ctx, res); err != nil {
			m.logger.Warn("notify_error", zap.String("game_id", res.GameID), zap.Error(err))
		}
	}()
}

// Close cancels pending replies, waits for in-flight work and closes all
// subscriber channels. The store is left open.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for id := range m.pending {
		m.stopLocked(id)
	}
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	for id, set := range m.subs {
		for _, ch := range set {
			close(ch)
		}
		delete(m.subs, id)
	}
	m.mu.Unlock()
	return nil
}
