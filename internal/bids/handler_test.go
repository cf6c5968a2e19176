package bids

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assignsphere/backend/internal/middleware"
)

func placeRequest(body string, writerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/bids", strings.NewReader(body))
	if writerID != uuid.Nil {
		req = req.WithContext(middleware.WithWriter(req.Context(), writerID))
	}
	return req
}

func TestHandlerPlace_Created(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	body := `{"project_id":"` + f.projectID.String() + `","base_price_cents":1000}`
	rec := httptest.NewRecorder()
	h.Place(rec, placeRequest(body, f.writer.ID))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string `json:"message"`
		Bid     struct {
			PriceCents int64 `json:"price_cents"`
		} `json:"bid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bid placed", resp.Message)
	assert.Equal(t, int64(2500), resp.Bid.PriceCents)
}

func TestHandlerPlace_NoWriterInContext(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	body := `{"project_id":"` + f.projectID.String() + `","base_price_cents":1000}`
	rec := httptest.NewRecorder()
	h.Place(rec, placeRequest(body, uuid.Nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerPlace_BadBody(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"bad project id", `{"project_id":"not-a-uuid","base_price_cents":1000}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Place(rec, placeRequest(tc.body, f.writer.ID))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlerPlace_UnknownProjectIs404(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	body := `{"project_id":"` + uuid.NewString() + `","base_price_cents":1000}`
	rec := httptest.NewRecorder()
	h.Place(rec, placeRequest(body, f.writer.ID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func listRequest(t *testing.T, projectID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/bids/"+projectID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("projectId", projectID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerListForProject_EmptyIs404(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	rec := httptest.NewRecorder()
	h.ListForProject(rec, listRequest(t, f.projectID.String()))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no bids found")
}

func TestHandlerListForProject_ReturnsBids(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, nil)

	_, err := f.svc.Place(context.Background(), f.projectID, f.writer.ID, 1000)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ListForProject(rec, listRequest(t, f.projectID.String()))

	require.Equal(t, http.StatusOK, rec.Code)

	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
