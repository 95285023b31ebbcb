// Package httpapi exposes hosted games over JSON HTTP and a websocket feed.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
	"github.com/AminKei/real-chees/internal/msgcat"
	"github.com/AminKei/real-chees/internal/session"
	"github.com/AminKei/real-chees/pkg/cheesdto"
	"go.uber.org/zap"
)

const maxJSONBodyBytes int64 = 1 << 16

// Sessions is the part of session.Manager the API drives.
type Sessions interface {
	Create(ctx context.Context, opts session.CreateOptions) (*session.Record, error)
	Get(ctx context.Context, id string) (*session.Record, error)
	Select(ctx context.Context, id string, sq engine.Square) (*session.Record, bool, error)
	Move(ctx context.Context, id string, dest engine.Square) (*session.Record, bool, error)
	MoveFrom(ctx context.Context, id string, from, to engine.Square) (*session.Record, bool, error)
	Reset(ctx context.Context, id string) (*session.Record, error)
	DismissGameOver(ctx context.Context, id string) (*session.Record, error)
	Delete(ctx context.Context, id string) error
	Subscribe(id string) (<-chan session.Record, func())
	RecentResults(ctx context.Context, limit int) ([]*session.Result, error)
}

// Server is the HTTP front end of a Sessions implementation.
type Server struct {
	sessions Sessions
	catalog  *msgcat.Catalog
	logger   *zap.Logger
	health   func(context.Context) error

	defaultComputer engine.Color
	defaultPolicy   game.EndPolicy
	pingInterval    time.Duration

	srvMu sync.Mutex
	srv   *http.Server
}

type Option func(*Server)

func WithCatalog(c *msgcat.Catalog) Option { return func(s *Server) { s.catalog = c } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHealthCheck sets the probe behind /healthz.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(s *Server) { s.health = fn }
}

// WithDefaults sets the computer side and end policy used when a create
// request leaves them empty.
func WithDefaults(computer engine.Color, policy game.EndPolicy) Option {
	return func(s *Server) {
		s.defaultComputer = computer
		s.defaultPolicy = policy
	}
}

func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:        sessions,
		logger:          zap.NewNop(),
		defaultComputer: engine.Black,
		defaultPolicy:   game.CheckEndsGame,
		pingInterval:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen serves on addr until Close is called.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	s.logger.Info("http_listen", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the listener down gracefully.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srv = nil
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.withJSON(s.handleCreate))
	mux.HandleFunc("GET /api/sessions/{id}", s.withJSON(s.handleGet))
	mux.HandleFunc("POST /api/sessions/{id}/select", s.withJSON(s.handleSelect))
	mux.HandleFunc("POST /api/sessions/{id}/move", s.withJSON(s.handleMove))
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.withJSON(s.handleReset))
	mux.HandleFunc("POST /api/sessions/{id}/dismiss", s.withJSON(s.handleDismiss))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.withJSON(s.handleDelete))
	mux.HandleFunc("GET /api/results", s.withJSON(s.handleResults))
	mux.HandleFunc("GET /ws/sessions/{id}", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) withJSON(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, cheesdto.Error{Code: code, Message: msg})
}

// writeSessionError maps session sentinels onto status codes.
func (s *Server) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, cheesdto.CodeNotFound, "session not found")
	case errors.Is(err, session.ErrComputerTurn):
		writeError(w, http.StatusConflict, cheesdto.CodeComputerTurn, "the computer is to move")
	case errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, cheesdto.CodeConflict, "concurrent update, retry")
	case errors.Is(err, session.ErrInvalidPosition):
		writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, err.Error())
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, cheesdto.CodeUnavailable, "shutting down")
	default:
		s.logger.Error("http_internal_error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, cheesdto.CodeInternal, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, cheesdto.CodeBadRequest, "request too large")
			return false
		}
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "invalid json")
		return false
	}
	return true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body cheesdto.CreateSessionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	opts := session.CreateOptions{
		Computer: s.defaultComputer,
		Policy:   s.defaultPolicy,
		FEN:      body.FEN,
	}
	if v := strings.TrimSpace(body.Computer); v != "" {
		c, ok := session.ParseComputer(v)
		if !ok {
			writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "invalid computer color")
			return
		}
		opts.Computer = c
	}
	if v := strings.TrimSpace(body.Policy); v != "" {
		p, err := game.ParsePolicy(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, err.Error())
			return
		}
		opts.Policy = p
	}
	rec, err := s.sessions.Create(r.Context(), opts)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toDTO(rec))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDTO(rec))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body cheesdto.SelectRequest
	if !decodeBody(w, r, &body) {
		return
	}
	sq := engine.Sq(body.Row, body.Col)
	if !sq.Valid() {
		writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "square out of range")
		return
	}
	rec, ok, err := s.sessions.Select(r.Context(), r.PathValue("id"), sq)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cheesdto.MoveResponse{Applied: ok, Session: s.toDTO(rec)})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var body cheesdto.MoveRequest
	if !decodeBody(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	var (
		rec *session.Record
		ok  bool
		err error
	)
	switch {
	case body.From != nil && body.To != nil:
		from, to := engine.Sq(body.From.Row, body.From.Col), engine.Sq(body.To.Row, body.To.Col)
		if !from.Valid() || !to.Valid() {
			writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "square out of range")
			return
		}
		rec, ok, err = s.sessions.MoveFrom(r.Context(), id, from, to)
	case body.Row != nil && body.Col != nil:
		dest := engine.Sq(*body.Row, *body.Col)
		if !dest.Valid() {
			writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "square out of range")
			return
		}
		rec, ok, err = s.sessions.Move(r.Context(), id, dest)
	default:
		writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "need row/col or from/to")
		return
	}
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cheesdto.MoveResponse{Applied: ok, Session: s.toDTO(rec)})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDTO(rec))
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.DismissGameOver(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toDTO(rec))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, cheesdto.CodeBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	results, err := s.sessions.RecentResults(r.Context(), limit)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	out := cheesdto.ResultsResponse{Results: make([]cheesdto.GameResult, 0, len(results))}
	for _, res := range results {
		out.Results = append(out.Results, resultDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
