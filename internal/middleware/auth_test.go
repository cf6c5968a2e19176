package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubValidator struct {
	id   uuid.UUID
	role string
	err  error
}

func (s *stubValidator) ValidateToken(string) (uuid.UUID, string, error) {
	return s.id, s.role, s.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := WriterFromCtx(r.Context()); ok {
		w.Write([]byte(id.String()))
	}
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWriterAuth_ValidToken(t *testing.T) {
	writerID := uuid.New()
	mw := WriterAuth(&stubValidator{id: writerID, role: models.RoleWriter})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/bids", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != writerID.String() {
		t.Errorf("expected writer id %q in context, got %q", writerID, body)
	}
}

func TestWriterAuth_MissingOrMalformedHeader(t *testing.T) {
	mw := WriterAuth(&stubValidator{role: models.RoleWriter})(okHandler)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"bare bearer", "Bearer "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/bids", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestWriterAuth_InvalidToken(t *testing.T) {
	mw := WriterAuth(&stubValidator{err: errors.New("expired")})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/bids", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestWriterAuth_WrongRole(t *testing.T) {
	mw := WriterAuth(&stubValidator{id: uuid.New(), role: models.RoleStudent})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/bids", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("student tokens must not pass writer auth, got %d", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	const key = "letmein"
	sum := sha256.Sum256([]byte(key))
	keyHash := hex.EncodeToString(sum[:])

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name    string
		hash    string
		header  string
		wantCode int
	}{
		{"valid key", keyHash, "Bearer " + key, http.StatusOK},
		{"wrong key", keyHash, "Bearer nope", http.StatusUnauthorized},
		{"missing header", keyHash, "", http.StatusUnauthorized},
		{"not configured", "", "Bearer " + key, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := AdminAuth(tc.hash)(next)
			req := httptest.NewRequest(http.MethodGet, "/api/admin/writers/pending", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rec.Code)
			}
		})
	}
}
