package config

const (
	// TopicVideoProcess is the NSQ topic for full video ingestion runs
	// (audio fetch, transcription, topic extraction).
	TopicVideoProcess = "video.process"

	// TopicCheatsheetGenerate is the NSQ topic for cheatsheet generation runs.
	TopicCheatsheetGenerate = "cheatsheet.generate"
)
