package summarize

import (
	"context"
	"errors"
)

// ErrTransform marks a failed model call. A reduction job aborts on the first
// occurrence; retry policy lives with the caller, not here.
var ErrTransform = errors.New("transform failed")

// ModelConfig carries the inference parameters for one call. It is passed as
// an explicit value alongside every Invoke so the engine stays a pure function
// of its inputs.
type ModelConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Transform is the capability of sending a prompt and receiving generated
// text back. Implementations are expected to be safe for concurrent use.
type Transform interface {
	Invoke(ctx context.Context, prompt string, cfg ModelConfig) (string, error)
}
