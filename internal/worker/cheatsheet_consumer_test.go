package worker

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vodsheet/features/cheatsheet"
	"vodsheet/features/job"
	"vodsheet/features/video"
)

func readyVideo() *video.Video {
	return &video.Video{
		ID:               "vid-1",
		YoutubeID:        "dQw4w9WgXcQ",
		ProcessingStatus: video.StatusTopicsFetched,
		Language:         "en",
		Persona:          "a pragmatic startup founder",
		TranscriptPath:   "/data/vid-1.transcript.json",
	}
}

func transcriptBlob(t *testing.T, content string) []byte {
	t.Helper()
	raw, err := json.Marshal(Transcript{Text: content, Language: "en", Chunks: 1})
	require.NoError(t, err)
	return raw
}

func TestCheatsheetConsumer_RefineWhenNoTopicsRequested(t *testing.T) {
	sheets := new(MockCheatsheetStore)
	videos := new(MockVideoStore)
	blobs := new(MockBlobStore)
	transform := &fakeTransform{reply: func(prompt string) (string, error) {
		return "# Cheatsheet\ncontent", nil
	}}

	consumer := NewCheatsheetConsumer(sheets, videos, new(MockJobRepo), blobs, transform, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", VideoID: "vid-1", ProcessingStatus: cheatsheet.StatusPending}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)
	sheets.On("UpdateStatus", mock.Anything, "cs-1", cheatsheet.StatusProcessing).Return(nil)
	videos.On("Get", mock.Anything, "vid-1").Return(readyVideo(), nil)
	blobs.On("ReadFile", "/data/vid-1.transcript.json").Return(transcriptBlob(t, "the talk"), nil)
	sheets.On("UpdateResult", mock.Anything, "cs-1", "# Cheatsheet\ncontent", map[string]any(nil)).Return(nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	require.NoError(t, err)
	sheets.AssertExpectations(t)

	// The persona extracted for the video steers the prompt.
	prompts := transform.seen()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "pragmatic startup founder")
}

func TestCheatsheetConsumer_TopicScopedRequest(t *testing.T) {
	sheets := new(MockCheatsheetStore)
	videos := new(MockVideoStore)
	blobs := new(MockBlobStore)
	transform := &fakeTransform{reply: func(prompt string) (string, error) {
		return "topic notes", nil
	}}

	consumer := NewCheatsheetConsumer(sheets, videos, new(MockJobRepo), blobs, transform, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", VideoID: "vid-1", ProcessingStatus: cheatsheet.StatusPending, NeededTopics: []string{"pricing strategy"}}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)
	sheets.On("UpdateStatus", mock.Anything, "cs-1", cheatsheet.StatusProcessing).Return(nil)
	videos.On("Get", mock.Anything, "vid-1").Return(readyVideo(), nil)
	blobs.On("ReadFile", "/data/vid-1.transcript.json").Return(transcriptBlob(t, "the talk"), nil)
	sheets.On("UpdateResult", mock.Anything, "cs-1", "topic notes", map[string]any(nil)).Return(nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	require.NoError(t, err)
	prompts := transform.seen()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "pricing strategy")
}

func TestCheatsheetConsumer_StructuredRequestExtractsSections(t *testing.T) {
	sheets := new(MockCheatsheetStore)
	videos := new(MockVideoStore)
	blobs := new(MockBlobStore)
	transform := &fakeTransform{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "single JSON object") {
			return `{"episode_summary":"short","key_takeaways":["a"],"notable_quotes":[],"tools_and_resources":[],"action_items":[]}`, nil
		}
		return "# Cheatsheet", nil
	}}

	consumer := NewCheatsheetConsumer(sheets, videos, new(MockJobRepo), blobs, transform, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", VideoID: "vid-1", ProcessingStatus: cheatsheet.StatusPending, Structured: true}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)
	sheets.On("UpdateStatus", mock.Anything, "cs-1", cheatsheet.StatusProcessing).Return(nil)
	videos.On("Get", mock.Anything, "vid-1").Return(readyVideo(), nil)
	blobs.On("ReadFile", "/data/vid-1.transcript.json").Return(transcriptBlob(t, "the talk"), nil)
	sheets.On("UpdateResult", mock.Anything, "cs-1", "# Cheatsheet", mock.Anything).Return(nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	require.NoError(t, err)
	sections := sheets.Calls[len(sheets.Calls)-1].Arguments.Get(3).(map[string]any)
	assert.Equal(t, "short", sections["episode_summary"])
	assert.Equal(t, []string{"a"}, sections["key_takeaways"])
	assert.Equal(t, []string{}, sections["notable_quotes"])
}

func TestCheatsheetConsumer_FailureMarksSheetAndDeadLetters(t *testing.T) {
	sheets := new(MockCheatsheetStore)
	videos := new(MockVideoStore)
	blobs := new(MockBlobStore)
	jobs := new(MockJobRepo)
	transform := &fakeTransform{reply: func(prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}}

	consumer := NewCheatsheetConsumer(sheets, videos, jobs, blobs, transform, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", VideoID: "vid-1", ProcessingStatus: cheatsheet.StatusPending}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)
	sheets.On("UpdateStatus", mock.Anything, "cs-1", cheatsheet.StatusProcessing).Return(nil)
	videos.On("Get", mock.Anything, "vid-1").Return(readyVideo(), nil)
	blobs.On("ReadFile", "/data/vid-1.transcript.json").Return(transcriptBlob(t, "the talk"), nil)
	sheets.On("UpdateFailure", mock.Anything, "cs-1", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "model unavailable")
	})).Return(nil)
	jobs.On("Save", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	assert.NoError(t, err)
	sheets.AssertExpectations(t)
	videos.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)

	failed := jobs.Calls[0].Arguments.Get(1).(*job.Job)
	assert.Equal(t, "cheatsheet.generate", failed.Topic)
	assert.Equal(t, "cs-1", failed.RecordID)
}

func TestCheatsheetConsumer_VideoWithoutTranscriptFails(t *testing.T) {
	sheets := new(MockCheatsheetStore)
	videos := new(MockVideoStore)
	jobs := new(MockJobRepo)

	consumer := NewCheatsheetConsumer(sheets, videos, jobs, new(MockBlobStore), nil, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", VideoID: "vid-1", ProcessingStatus: cheatsheet.StatusPending}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)
	sheets.On("UpdateStatus", mock.Anything, "cs-1", cheatsheet.StatusProcessing).Return(nil)
	videos.On("Get", mock.Anything, "vid-1").Return(&video.Video{ID: "vid-1", ProcessingStatus: video.StatusPending}, nil)
	sheets.On("UpdateFailure", mock.Anything, "cs-1", mock.Anything).Return(nil)
	jobs.On("Save", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	assert.NoError(t, err)
	sheets.AssertExpectations(t)
}

func TestCheatsheetConsumer_AlreadyDoneDropped(t *testing.T) {
	sheets := new(MockCheatsheetStore)

	consumer := NewCheatsheetConsumer(sheets, new(MockVideoStore), new(MockJobRepo), new(MockBlobStore), nil, defaultSettings(), testConfig())

	c := &cheatsheet.Cheatsheet{ID: "cs-1", ProcessingStatus: cheatsheet.StatusDone}
	sheets.On("Get", mock.Anything, "cs-1").Return(c, nil)

	body, _ := json.Marshal(CheatsheetGeneratePayload{CheatsheetID: "cs-1"})
	err := consumer.HandleMessage(newMessage(body))

	assert.NoError(t, err)
	sheets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
