package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockVideoRepo struct{ mock.Mock }

func (m *MockVideoRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockCheatsheetRepo struct{ mock.Mock }

func (m *MockCheatsheetRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockJobRepo struct{ mock.Mock }

func (m *MockJobRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestGetStats(t *testing.T) {
	videos := new(MockVideoRepo)
	sheets := new(MockCheatsheetRepo)
	jobs := new(MockJobRepo)
	handler := NewHandler(videos, sheets, jobs)

	videos.On("Count", mock.Anything).Return(4, nil)
	sheets.On("Count", mock.Anything).Return(7, nil)
	jobs.On("Count", mock.Anything).Return(1, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data StatsResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.Videos)
	assert.Equal(t, 7, body.Data.Cheatsheets)
	assert.Equal(t, 1, body.Data.FailedJobs)
}

func TestGetStats_CountError(t *testing.T) {
	videos := new(MockVideoRepo)
	sheets := new(MockCheatsheetRepo)
	jobs := new(MockJobRepo)
	handler := NewHandler(videos, sheets, jobs)

	videos.On("Count", mock.Anything).Return(0, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	sheets.AssertNotCalled(t, "Count", mock.Anything)
}
