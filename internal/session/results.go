package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
)

// ResultRepository persists finished games. SaveResult is an upsert keyed by
// Result.GameID.
type ResultRepository interface {
	SaveResult(ctx context.Context, r *Result) error
	RecentResults(ctx context.Context, limit int) ([]*Result, error)
}

// Notifier announces finished games to the outside world.
type Notifier interface {
	GameFinished(ctx context.Context, r *Result) error
}

// MemoryRepository is used when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{results: make(map[string]*Result)}
}

func (m *MemoryRepository) SaveResult(ctx context.Context, r *Result) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	cp := *r
	cp.Moves = append([]string(nil), r.Moves...)
	m.mu.Lock()
	m.results[r.GameID] = &cp
	m.mu.Unlock()
	return nil
}

// RecentResults returns results ordered by EndedAt, newest first.
func (m *MemoryRepository) RecentResults(ctx context.Context, limit int) ([]*Result, error) {
	m.mu.RLock()
	items := make([]*Result, 0, len(m.results))
	for _, r := range m.results {
		cp := *r
		items = append(items, &cp)
	}
	m.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].GameID > items[j].GameID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func pgnResult(winner engine.Color) string {
	switch winner {
	case engine.White:
		return "1-0"
	case engine.Black:
		return "0-1"
	default:
		return "*"
	}
}

func playerName(side, computer engine.Color) string {
	if side == computer {
		return "Computer"
	}
	return "Human"
}

// BuildPGN renders a PGN-like text for r. Moves are in coordinate notation
// since the rule set does not cover castling, promotion or en passant.
func BuildPGN(r *Result) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	date := r.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	result := pgnResult(r.Winner)
	b.WriteString("[Event \"Chees\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", playerName(engine.White, r.Computer)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", playerName(engine.Black, r.Computer)))
	if r.Outcome != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", r.Outcome))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(r.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, r.Moves[i]))
		if i+1 < len(r.Moves) {
			b.WriteString(" ")
			b.WriteString(r.Moves[i+1])
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}
