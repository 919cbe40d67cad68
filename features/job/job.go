package job

import (
	"encoding/json"
	"time"
)

type Job struct {
	ID        string          `json:"id"`
	RecordID  string          `json:"record_id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}
