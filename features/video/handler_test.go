package video

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandlerCreate(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	handler := NewHandler(NewService(repo, pub))

	repo.On("GetByYoutubeID", mock.Anything, "dQw4w9WgXcQ").Return(nil, sql.ErrNoRows)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data Video `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dQw4w9WgXcQ", body.Data.YoutubeID)
}

func TestHandlerCreate_InvalidURL(t *testing.T) {
	handler := NewHandler(NewService(new(MockRepository), new(MockPublisher)))

	req := httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(`{"url":"https://example.com/nope"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandlerCreate_MissingURL(t *testing.T) {
	handler := NewHandler(NewService(new(MockRepository), new(MockPublisher)))

	req := httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGet_NotFound(t *testing.T) {
	repo := new(MockRepository)
	handler := NewHandler(NewService(repo, new(MockPublisher)))

	repo.On("Get", mock.Anything, "ghost").Return(nil, sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/videos/ghost", nil)
	req.SetPathValue("id", "ghost")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestHandlerList(t *testing.T) {
	repo := new(MockRepository)
	handler := NewHandler(NewService(repo, new(MockPublisher)))

	repo.On("List", mock.Anything).Return([]Video{
		{ID: "vid-1", YoutubeID: "dQw4w9WgXcQ", ProcessingStatus: StatusTopicsFetched},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []Video        `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta["count"])
}
