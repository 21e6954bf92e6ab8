package statsclient

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestEncodeFEN(t *testing.T) {
	enc := EncodeFEN(startFEN)
	unescaped, err := url.PathUnescape(enc)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(unescaped)
	require.NoError(t, err)
	assert.Equal(t, startFEN, string(raw))
	assert.NotContains(t, enc, "/")
}

func TestMovesByFEN(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"moveSAN":"e4","move_times_played":500,"timesPlayed":480,"whiteWins":250,"blackWins":200,"recursiveScoreWhite":0.55,"recursiveScoreBlack":0.45,"positionID":"123"},
			{"moveSAN":"d4","move_times_played":300},
			{"move_times_played":10},
			{"moveSAN":"a3"},
			{"moveSAN":"h3","move_times_played":-1}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(time.Second))
	moves, err := c.MovesByFEN(context.Background(), startFEN, "1")
	require.NoError(t, err)
	require.Len(t, moves, 2)

	assert.Equal(t, "/fen/"+EncodeFEN(startFEN)+"/1/moves", gotPath)
	assert.Equal(t, "e4", moves[0].SAN)
	assert.Equal(t, int64(500), moves[0].MoveTimesPlayed)
	assert.Equal(t, int64(480), moves[0].TimesPlayed)
	assert.Equal(t, "123", moves[0].PositionID)
	assert.InDelta(t, 0.55, moves[0].RecursiveScoreWhite, 1e-9)
	assert.Equal(t, "d4", moves[1].SAN)
	assert.Zero(t, moves[1].WhiteWins)
}

func TestMovesErrorObjectIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"No moves found for this position"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).MovesByPosition(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientErrorStatusIsNotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := New(srv.URL).Position(context.Background(), "42")
		srv.Close()
		assert.ErrorIs(t, err, ErrNotFound, "status %d", status)
		assert.NotErrorIs(t, err, ErrUnavailable, "status %d", status)
	}
}

func TestServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Position(context.Background(), "42")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGarbageIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).MovesByPosition(context.Background(), "42")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPositionByFEN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fen/"+EncodeFEN(startFEN)+"/3/position", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"positionID":"340282366920938463463374607431768211455","timesPlayed":1000,"whiteWins":520,"blackWins":410,"recursiveScoreWhite":0.5,"recursiveScoreBlack":0.5,"elo":3}`))
	}))
	defer srv.Close()

	pos, err := New(srv.URL).PositionByFEN(context.Background(), startFEN, "3")
	require.NoError(t, err)
	assert.True(t, pos.Resolved())
	assert.Equal(t, "340282366920938463463374607431768211455", pos.PositionID)
	assert.Equal(t, int64(1000), pos.TimesPlayed)
	assert.Equal(t, int64(3), pos.Elo)
	assert.Equal(t, startFEN, pos.FEN)
}

func TestPositionErrorObject(t *testing.T) {
	_, err := DecodePosition([]byte(`{"error":"Position not found"}`))
	assert.ErrorIs(t, err, ErrNotFound)
}
