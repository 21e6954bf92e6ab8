// Package server serves the move statistics HTTP API.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/metrics"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
	"github.com/verte-zerg/chessex/internal/respcache"
	"github.com/verte-zerg/chessex/internal/statsdb"
)

// Backend answers statistics queries for one database.
type Backend interface {
	Position(ctx context.Context, key statsdb.Key) (model.Position, bool, error)
	NextMoves(ctx context.Context, key statsdb.Key) ([]model.MoveStat, error)
}

// Cache stores rendered responses by request path.
type Cache interface {
	Get(ctx context.Context, path string) (respcache.Entry, bool, error)
	Set(ctx context.Context, path string, e respcache.Entry) error
}

// Options configures a Server.
type Options struct {
	Primary Backend
	// Min50 is consulted when the primary database looks incomplete.
	Min50    Backend
	Cache    Cache
	Metrics  *metrics.Collector
	Messages *msgcat.Catalog
	Logger   *zap.Logger
	// AccessLog enables chi's request logger on stdout.
	AccessLog bool
}

// Server routes statistics requests.
type Server struct {
	primary   Backend
	min50     Backend
	cache     Cache
	metrics   *metrics.Collector
	msgs      *msgcat.Catalog
	logger    *zap.Logger
	accessLog bool
}

var errBadRequest = errors.New("bad request")

// New constructs a server. Primary is required.
func New(opts Options) *Server {
	s := &Server{
		primary:   opts.Primary,
		min50:     opts.Min50,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		msgs:      opts.Messages,
		logger:    opts.Logger,
		accessLog: opts.AccessLog,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.msgs == nil {
		s.msgs = msgcat.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector()
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	if s.accessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": s.msgs.Text("server.hello", nil)})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/position/{id}", s.handle("/position/{id}", s.positionByID))
	r.Get("/position/{id}/moves", s.handle("/position/{id}/moves", s.movesByID))
	r.Get("/fen/{fen}/{rating}/position", s.handle("/fen/{fen}/{rating}/position", s.positionByFEN))
	r.Get("/fen/{fen}/{rating}/moves", s.handle("/fen/{fen}/{rating}/moves", s.movesByFEN))
	return r
}

type handlerFunc func(r *http.Request) (int, any)

func (s *Server) handle(route string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		path := r.URL.EscapedPath()
		status := http.StatusOK
		defer func() {
			s.metrics.RecordHTTPRequest(route, strconv.Itoa(status), time.Since(started).Seconds())
		}()

		if s.cache != nil {
			entry, ok, err := s.cache.Get(r.Context(), path)
			switch {
			case err != nil:
				s.metrics.RecordCacheError()
				s.logger.Warn("cache read failed", zap.String("path", path), zap.Error(err))
			case ok:
				s.metrics.RecordCacheHit()
				status = entry.Status
				writeRaw(w, entry.Status, entry.Body)
				return
			default:
				s.metrics.RecordCacheMiss()
			}
		}

		code, payload := fn(r)
		status = code
		body, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("failed to encode response", zap.String("path", path), zap.Error(err))
			status = http.StatusInternalServerError
			writeJSON(w, status, errorBody{Error: "internal error"})
			return
		}
		if s.cache != nil && code != http.StatusInternalServerError {
			if err := s.cache.Set(r.Context(), path, respcache.Entry{Status: code, Body: body}); err != nil {
				s.metrics.RecordCacheError()
				s.logger.Warn("cache write failed", zap.String("path", path), zap.Error(err))
			}
		}
		writeRaw(w, code, body)
	}
}

// choose picks the database for key. Lookup failures keep the primary.
func (s *Server) choose(ctx context.Context, key statsdb.Key) Backend {
	if s.min50 == nil {
		return s.primary
	}
	useMin50, err := s.needsMin50(ctx, key)
	if err != nil {
		s.logger.Debug("db selection failed, using primary", zap.Error(err))
	}
	if useMin50 {
		s.metrics.RecordDBSelection("min50")
		return s.min50
	}
	s.metrics.RecordDBSelection("default")
	return s.primary
}

func (s *Server) needsMin50(ctx context.Context, key statsdb.Key) (bool, error) {
	pos, found, err := s.primary.Position(ctx, key)
	if err != nil {
		return false, err
	}
	moves, err := s.primary.NextMoves(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || len(moves) == 0 {
		return true, nil
	}
	if pos.TimesPlayed == 0 {
		return true, nil
	}
	return pos.TimesPlayed > 2*model.SumMoveTimesPlayed(moves), nil
}

func (s *Server) positionByID(r *http.Request) (int, any) {
	key, err := statsdb.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return s.badRequest(err)
	}
	return s.position(r.Context(), key)
}

func (s *Server) movesByID(r *http.Request) (int, any) {
	key, err := statsdb.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return s.badRequest(err)
	}
	return s.moves(r.Context(), key)
}

func (s *Server) positionByFEN(r *http.Request) (int, any) {
	key, err := fenKey(r)
	if err != nil {
		return s.badRequest(err)
	}
	return s.position(r.Context(), key)
}

func (s *Server) movesByFEN(r *http.Request) (int, any) {
	key, err := fenKey(r)
	if err != nil {
		return s.badRequest(err)
	}
	return s.moves(r.Context(), key)
}

func (s *Server) position(ctx context.Context, key statsdb.Key) (int, any) {
	pos, found, err := s.choose(ctx, key).Position(ctx, key)
	if err != nil {
		s.logger.Error("position query failed", zap.String("id", key.String()), zap.Error(err))
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
	if !found {
		return http.StatusNotFound, errorBody{Error: s.msgs.Text("server.position_not_found", nil)}
	}
	return http.StatusOK, toWirePosition(pos)
}

func (s *Server) moves(ctx context.Context, key statsdb.Key) (int, any) {
	moves, err := s.choose(ctx, key).NextMoves(ctx, key)
	if err != nil {
		s.logger.Error("moves query failed", zap.String("id", key.String()), zap.Error(err))
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
	if len(moves) == 0 {
		return http.StatusNotFound, errorBody{Error: s.msgs.Text("server.moves_not_found", nil)}
	}
	out := make([]wireMove, len(moves))
	for i, m := range moves {
		out[i] = toWireMove(m)
	}
	return http.StatusOK, out
}

func (s *Server) badRequest(err error) (int, any) {
	return http.StatusBadRequest, errorBody{Error: err.Error()}
}

func fenKey(r *http.Request) (statsdb.Key, error) {
	seg, err := url.PathUnescape(chi.URLParam(r, "fen"))
	if err != nil {
		return statsdb.Key{}, errBadRequest
	}
	raw, err := base64.StdEncoding.DecodeString(seg)
	if err != nil {
		return statsdb.Key{}, errors.New("fen is not valid base64")
	}
	rating, err := statsdb.ParseRating(chi.URLParam(r, "rating"))
	if err != nil {
		return statsdb.Key{}, err
	}
	return statsdb.PositionKey(string(raw), rating)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// Best-effort write; the client went away.
		_ = err
	}
}
