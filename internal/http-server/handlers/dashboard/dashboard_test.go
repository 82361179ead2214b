package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"tgadmin/entity"

	"github.com/stretchr/testify/assert"
)

type fakeCore struct {
	err error
}

func (f fakeCore) Dashboard(_ context.Context) (*entity.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Dashboard{Total: 10, Active: 7, Banned: 3, SystemHealth: "Good"}, nil
}

func TestStats(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	Stats(log, fakeCore{})(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), entity.Identity{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":10,"active":7,"banned":3,"systemHealth":"Good"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Stats(log, fakeCore{err: errors.New("db down")})(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), entity.Identity{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
