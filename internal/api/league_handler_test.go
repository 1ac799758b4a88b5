package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/platform/metrics"
	"github.com/pitchdata/pitchdata-api/internal/schema"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// stubLeagueStore implements store.LeagueStore with canned results.
type stubLeagueStore struct {
	createErr error
	getLeague *domain.League
	getErr    error
	updateErr error
	deleteErr error
	listOut   []*domain.League
	listErr   error

	lastFilter store.LeagueFilter
	lastPage   store.Page
	created    *domain.League
}

func (s *stubLeagueStore) Create(_ context.Context, l *domain.League) error {
	s.created = l
	return s.createErr
}

func (s *stubLeagueStore) GetByID(_ context.Context, _ int64) (*domain.League, error) {
	return s.getLeague, s.getErr
}

func (s *stubLeagueStore) Update(_ context.Context, _ *domain.League) error { return s.updateErr }
func (s *stubLeagueStore) Delete(_ context.Context, _ int64) error          { return s.deleteErr }

func (s *stubLeagueStore) List(_ context.Context, f store.LeagueFilter, p store.Page) ([]*domain.League, error) {
	s.lastFilter = f
	s.lastPage = p
	return s.listOut, s.listErr
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWithRegisterer(prometheus.NewRegistry())
}

func newLeagueRouter(s *stubLeagueStore) http.Handler {
	h := NewLeagueHandler(s, domain.BuildRegistry(), testMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/leagues", func(r chi.Router) {
		r.Post("/", h.CreateLeague)
		r.Get("/", h.ListLeagues)
		r.Get("/{id}", h.GetLeague)
		r.Put("/{id}", h.UpdateLeague)
		r.Delete("/{id}", h.DeleteLeague)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validLeagueBody = `{
	"league_id": 39,
	"name": "Premier League",
	"type": "League",
	"country_code": "GB"
}`

func TestCreateLeague(t *testing.T) {
	t.Parallel()

	t.Run("valid payload returns 201 with the entity", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPost, "/leagues", validLeagueBody)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, s.created)
		assert.Equal(t, int64(39), s.created.LeagueID)

		var got domain.League
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Premier League", got.Name)
	})

	t.Run("invalid payload returns 422 with every field error", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{}
		body := `{"league_id": 39, "type": "Friendly", "country_code": "gbr"}`
		rec := doRequest(t, newLeagueRouter(s), http.MethodPost, "/leagues", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Nil(t, s.created)

		var resp struct {
			Error   string              `json:"error"`
			Details []schema.FieldError `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Details, 3)
		assert.Equal(t, "name", resp.Details[0].Field)
		assert.Equal(t, schema.KindMissing, resp.Details[0].Kind)
		assert.Equal(t, "type", resp.Details[1].Field)
		assert.Equal(t, schema.KindEnumViolation, resp.Details[1].Kind)
		assert.Equal(t, "country_code", resp.Details[2].Field)
		assert.Equal(t, schema.KindPatternMismatch, resp.Details[2].Kind)
	})

	t.Run("unknown field returns 422", func(t *testing.T) {
		t.Parallel()
		body := `{"league_id": 39, "name": "Premier League", "nickname": "EPL"}`
		rec := doRequest(t, newLeagueRouter(&stubLeagueStore{}), http.MethodPost, "/leagues", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Details []schema.FieldError `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "nickname", resp.Details[0].Field)
		assert.Equal(t, schema.KindUnknown, resp.Details[0].Kind)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, newLeagueRouter(&stubLeagueStore{}), http.MethodPost, "/leagues", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate league returns 409", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{createErr: store.ErrLeagueExists}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPost, "/leagues", validLeagueBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("pool timeout returns 503", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{createErr: store.ErrPoolTimeout}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPost, "/leagues", validLeagueBody)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetLeague(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{getLeague: &domain.League{LeagueID: 39, Name: "Premier League"}}
		rec := doRequest(t, newLeagueRouter(s), http.MethodGet, "/leagues/39", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var got domain.League
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(39), got.LeagueID)
	})

	t.Run("missing returns 404", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{getErr: store.ErrLeagueNotFound}
		rec := doRequest(t, newLeagueRouter(s), http.MethodGet, "/leagues/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric ID returns 400", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, newLeagueRouter(&stubLeagueStore{}), http.MethodGet, "/leagues/premier", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateLeague(t *testing.T) {
	t.Parallel()

	t.Run("body ID must match the path", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPut, "/leagues/40", validLeagueBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("matching IDs update and return 200", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPut, "/leagues/39", validLeagueBody)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing league returns 404", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{updateErr: store.ErrLeagueNotFound}
		rec := doRequest(t, newLeagueRouter(s), http.MethodPut, "/leagues/39", validLeagueBody)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteLeague(t *testing.T) {
	t.Parallel()

	t.Run("deleted returns 204", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, newLeagueRouter(&stubLeagueStore{}), http.MethodDelete, "/leagues/39", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("missing returns 404", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{deleteErr: store.ErrLeagueNotFound}
		rec := doRequest(t, newLeagueRouter(s), http.MethodDelete, "/leagues/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListLeagues(t *testing.T) {
	t.Parallel()

	t.Run("passes filters and page through", func(t *testing.T) {
		t.Parallel()
		s := &stubLeagueStore{listOut: []*domain.League{{LeagueID: 39}}}
		rec := doRequest(t, newLeagueRouter(s), http.MethodGet,
			"/leagues?country=England&type=League&limit=5&offset=10", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, s.lastFilter.Country)
		assert.Equal(t, "England", *s.lastFilter.Country)
		require.NotNil(t, s.lastFilter.Type)
		assert.Equal(t, "League", *s.lastFilter.Type)
		assert.Equal(t, store.Page{Limit: 5, Offset: 10}, s.lastPage)
	})

	t.Run("empty result renders as an empty array", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, newLeagueRouter(&stubLeagueStore{}), http.MethodGet, "/leagues", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
