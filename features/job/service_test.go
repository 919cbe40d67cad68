package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, job *Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]Job, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Job), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

// --- Tests ---

func TestRetry_RepublishesToOriginalTopic(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	service := NewService(repo, pub)

	payload := json.RawMessage(`{"video_id":"vid-1"}`)
	repo.On("Get", mock.Anything, "job-1").Return(&Job{
		ID:      "job-1",
		Topic:   "video.process",
		Payload: payload,
	}, nil)
	pub.On("Publish", "video.process", []byte(payload)).Return(nil)
	repo.On("Delete", mock.Anything, "job-1").Return(nil)

	err := service.Retry(context.Background(), "job-1")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestRetry_JobNotFound(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	service := NewService(repo, pub)

	repo.On("Get", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	err := service.Retry(context.Background(), "missing")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRetry_PublishFails_KeepsJob(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	service := NewService(repo, pub)

	repo.On("Get", mock.Anything, "job-1").Return(&Job{ID: "job-1", Topic: "cheatsheet.generate"}, nil)
	pub.On("Publish", "cheatsheet.generate", mock.Anything).Return(errors.New("nsq down"))

	err := service.Retry(context.Background(), "job-1")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, new(MockPublisher))

	repo.On("List", mock.Anything).Return([]Job{{ID: "job-1"}}, nil)

	jobs, err := service.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
}
