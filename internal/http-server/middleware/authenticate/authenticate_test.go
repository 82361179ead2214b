package authenticate

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"tgadmin/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	calls int
}

func (f *fakeAuth) AuthenticateByToken(token string) (*entity.Identity, error) {
	f.calls++
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &entity.Identity{AdminId: "abc", ChatId: 42}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGate_Rejects(t *testing.T) {
	headers := map[string]string{
		"missing":    "",
		"basic":      "Basic Zm9vOmJhcg==",
		"no token":   "Bearer ",
		"bad token":  "Bearer garbage",
		"bare token": "good",
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			auth := &fakeAuth{}
			called := false
			gate := New(discard(), auth)
			h := gate.Wrap(func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["status"])
			assert.Equal(t, "Unauthorized", body["message"])
		})
	}
}

func TestGate_PassesIdentity(t *testing.T) {
	gate := New(discard(), &fakeAuth{})
	var got entity.Identity
	h := gate.Wrap(func(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
		got = identity
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, entity.Identity{AdminId: "abc", ChatId: 42}, got)
}

func TestGate_NilAuth(t *testing.T) {
	gate := New(discard(), nil)
	h := gate.Wrap(func(w http.ResponseWriter, r *http.Request, _ entity.Identity) {
		t.Fatal("handler must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
