package worker

// VideoProcessPayload rides the video.process topic.
type VideoProcessPayload struct {
	VideoID       string `json:"video_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// CheatsheetGeneratePayload rides the cheatsheet.generate topic.
type CheatsheetGeneratePayload struct {
	CheatsheetID  string `json:"cheatsheet_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Transcript is the JSON document persisted to blob storage once all audio
// chunks of a video have been transcribed.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Chunks   int    `json:"chunks"`
}
