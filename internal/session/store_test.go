package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AminKei/real-chees/internal/game"
)

func TestStoreUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := &Record{ID: "s1", GameID: "g1", State: game.InitialState(), Version: 1, CreatedAt: time.Now()}
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, rec); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate Insert: %v", err)
	}

	got, changed, err := s.Update(ctx, "s1", func(r *Record) error {
		r.State.Turn = r.State.Turn.Opposite()
		return nil
	})
	if err != nil || !changed {
		t.Fatalf("Update: changed=%v err=%v", changed, err)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}

	_, changed, err = s.Update(ctx, "s1", func(r *Record) error { return errNoChange })
	if err != nil || changed {
		t.Fatalf("no-op Update: changed=%v err=%v", changed, err)
	}
	loaded, err := s.Load(ctx, "s1")
	if err != nil || loaded.Version != 2 {
		t.Fatalf("Load: version=%v err=%v", loaded, err)
	}

	boom := errors.New("boom")
	if _, _, err := s.Update(ctx, "s1", func(r *Record) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("callback error not propagated: %v", err)
	}
	if _, _, err := s.Update(ctx, "nope", func(r *Record) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("missing session: %v", err)
	}
}
