package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/application/usecases/billing"
	"atelier/internal/application/usecases/clients"
	"atelier/internal/application/usecases/planner"
	"atelier/internal/domain/urgency"
	"atelier/internal/entities"
	"atelier/internal/repository"
	"atelier/internal/store"
)

func newTestServer(t *testing.T, urgentLimit int) (*Server, *planner.Usecase) {
	t.Helper()

	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.NewStore(backend, nil, zerolog.Nop())

	eventsRepo := repository.NewEventsRepo(st)
	plannerUsecase := planner.NewUsecase(eventsRepo, nil, zerolog.Nop())

	srv := NewServer(
		"127.0.0.1:0",
		plannerUsecase,
		billing.NewUsecase(eventsRepo, nil, zerolog.Nop(), 0),
		clients.NewUsecase(repository.NewClientsRepo(st)),
		repository.NewFloristsRepo(st),
		nil,
		urgentLimit,
		func() bool { return true },
		zerolog.Nop(),
	)
	return srv, plannerUsecase
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.e.ServeHTTP(rec, req)
	return rec
}

func TestUrgentEventsHandlerUsesConfiguredLimit(t *testing.T) {
	srv, plannerUsecase := newTestServer(t, 4)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := plannerUsecase.Create(ctx, entities.Event{
			Title: "ev",
			Date:  time.Now().AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	t.Run("configured limit is the fallback", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/events/urgent", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var ranked []urgency.RankedEvent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
		assert.Len(t, ranked, 4)
	})

	t.Run("query param wins over the configured limit", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/events/urgent?limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var ranked []urgency.RankedEvent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
		assert.Len(t, ranked, 2)
	})

	t.Run("invalid limit is rejected", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/events/urgent?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFloristHandlers(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec := doRequest(srv, http.MethodPost, "/florists", `{"name":"Iris","email":"iris@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created entities.Florist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Iris", created.Name)

	t.Run("update replaces the editable fields", func(t *testing.T) {
		body := `{"name":"Iris B.","phone":"123","unavailability":[{"from":"2026-07-01T00:00:00Z","to":"2026-07-10T00:00:00Z","reason":"vacation","active":true}]}`
		rec := doRequest(srv, http.MethodPut, "/florists/"+created.ID, body)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated entities.Florist
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Iris B.", updated.Name)
		assert.Equal(t, "123", updated.Phone)
		require.Len(t, updated.Unavailability, 1)
		assert.Equal(t, "vacation", updated.Unavailability[0].Reason)

		listRec := doRequest(srv, http.MethodGet, "/florists", "")
		require.Equal(t, http.StatusOK, listRec.Code)

		var listed []entities.Florist
		require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "Iris B.", listed[0].Name)
	})

	t.Run("unknown florist maps to 404", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPut, "/florists/missing", `{"name":"Nobody"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/florists", `{"email":"x@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
