package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/internal/repository/memory"
	"github.com/iamasit07/connect-four/internal/service/history"
	"github.com/iamasit07/connect-four/internal/service/table"
	"github.com/iamasit07/connect-four/pkg/auth"
	"github.com/iamasit07/connect-four/pkg/uid"
)

type apiFixture struct {
	router  *gin.Engine
	manager *table.Manager
	tokens  *auth.TokenManager
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	historySvc := history.NewService(memory.NewGameRepo(), nil, time.Minute)
	manager := table.NewManager(historySvc, nil)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	router := NewRouter(RouterConfig{
		Tables:         manager,
		History:        historySvc,
		Tokens:         tokens,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return &apiFixture{router: router, manager: manager, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *apiFixture) createTable(t *testing.T) createTableResponse {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/tables", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[createTableResponse](t, w)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCreateAndGetTable(t *testing.T) {
	f := newFixture(t)

	created := f.createTable(t)
	assert.NotEmpty(t, created.TableID)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, 1, created.Round)
	assert.Equal(t, domain.NewState(), created.State)
	require.NoError(t, f.tokens.Authorize(created.Token, created.TableID))

	w := f.do(t, http.MethodGet, "/api/tables/"+created.TableID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[table.Snapshot](t, w)
	assert.Equal(t, created.TableID, snap.TableID)
	assert.Equal(t, domain.StatusActive, snap.Status)

	w = f.do(t, http.MethodGet, "/api/tables/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/tables/"+uid.GenerateTableID(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedIDs(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/api/tables/not-a-table",
		"/api/tables/not-a-table/history",
		"/api/history/not-a-round",
		"/api/history/" + uid.GenerateRoundID(),
	} {
		w := f.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestMoves(t *testing.T) {
	f := newFixture(t)
	created := f.createTable(t)
	path := "/api/tables/" + created.TableID + "/moves"

	t.Run("accepted", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, gin.H{"column": 0}, created.Token)
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[table.MoveResult](t, w)
		assert.True(t, result.Accepted)
		assert.Equal(t, 0, result.Column)
		assert.Equal(t, domain.Rows-1, result.Row)
		assert.Equal(t, domain.Player1, result.Player)
		assert.Equal(t, domain.Player2, result.State.CurrentPlayer)
	})

	t.Run("out of range", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, gin.H{"column": domain.Columns}, created.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = f.do(t, http.MethodPost, path, gin.H{"column": -1}, created.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, gin.H{"col": 1}, created.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, gin.H{"column": 1}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token of another table", func(t *testing.T) {
		other := f.createTable(t)
		w := f.do(t, http.MethodPost, path, gin.H{"column": 1}, other.Token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("full column is rejected without error", func(t *testing.T) {
		fresh := f.createTable(t)
		freshPath := "/api/tables/" + fresh.TableID + "/moves"
		for i := 0; i < domain.Rows; i++ {
			w := f.do(t, http.MethodPost, freshPath, gin.H{"column": 3}, fresh.Token)
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := f.do(t, http.MethodPost, freshPath, gin.H{"column": 3}, fresh.Token)
		require.Equal(t, http.StatusOK, w.Code)
		result := decode[table.MoveResult](t, w)
		assert.False(t, result.Accepted)
		assert.Equal(t, -1, result.Row)
		assert.Equal(t, domain.Player1, result.State.CurrentPlayer)
	})
}

func TestFinishedRoundIsArchived(t *testing.T) {
	f := newFixture(t)
	created := f.createTable(t)
	path := "/api/tables/" + created.TableID

	var last table.MoveResult
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		w := f.do(t, http.MethodPost, path+"/moves", gin.H{"column": col}, created.Token)
		require.Equal(t, http.StatusOK, w.Code)
		last = decode[table.MoveResult](t, w)
	}
	assert.True(t, last.State.IsOver)
	assert.Equal(t, domain.Player1, last.State.Winner)

	f.manager.Wait()

	w := f.do(t, http.MethodGet, path+"/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	listing := decode[struct {
		TableID string         `json:"tableId"`
		Rounds  []roundSummary `json:"rounds"`
	}](t, w)
	assert.Equal(t, created.TableID, listing.TableID)
	require.Len(t, listing.Rounds, 1)
	summary := listing.Rounds[0]
	assert.Equal(t, created.RoundID, summary.RoundID)
	assert.Equal(t, domain.Player1, summary.Winner)
	assert.Equal(t, domain.ReasonConnectFour, summary.EndReason)
	assert.Equal(t, 7, summary.MovesCount)

	w = f.do(t, http.MethodGet, "/api/history/"+summary.RoundID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	record := decode[domain.GameRecord](t, w)
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1, 0}, record.Moves)
	assert.Equal(t, last.State.Grid, record.Board)

	w = f.do(t, http.MethodGet, "/api/history/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, path+"/history?limit=zero", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Run("restart opens a new round", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path+"/restart", nil, created.Token)
		require.Equal(t, http.StatusOK, w.Code)

		snap := decode[table.Snapshot](t, w)
		assert.Equal(t, 2, snap.Round)
		assert.NotEqual(t, created.RoundID, snap.RoundID)
		assert.Equal(t, domain.NewState(), snap.State)
		assert.Empty(t, snap.Moves)
	})
}

func TestDeleteTable(t *testing.T) {
	f := newFixture(t)
	created := f.createTable(t)
	path := "/api/tables/" + created.TableID

	w := f.do(t, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodDelete, path, nil, created.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, path, nil, created.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tables", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
