package summarize

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"vodsheet/internal/text"
)

type Algorithm string

const (
	AlgorithmOneShot   Algorithm = "one_shot"
	AlgorithmRefine    Algorithm = "refine"
	AlgorithmMapReduce Algorithm = "map_reduce"
)

const (
	defaultConcurrency   = 4
	defaultCombineBudget = 40000
	partialSeparator     = "\n\n"
	maxTreeDepth         = 6
)

// SeedFunc builds the prompt for the first (or only) chunk.
type SeedFunc func(chunk string) string

// RefineFunc builds the prompt folding a new chunk into the accumulated
// summary so far.
type RefineFunc func(existing, chunk string) string

// MapFunc builds the per-chunk prompt for the independent map phase.
type MapFunc func(chunk string) string

// CombineFunc builds the prompt merging joined map partials into one document.
type CombineFunc func(joined string) string

// Job is one reduction run: ordered chunks, an algorithm, and the prompt pair
// for that algorithm. OneShot is always required: a single-chunk input
// short-circuits to it regardless of the configured algorithm. Jobs are
// constructed per pipeline invocation and discarded after Run.
type Job struct {
	Chunks    []text.Chunk
	Algorithm Algorithm

	OneShot SeedFunc
	Seed    SeedFunc
	Refine  RefineFunc
	Map     MapFunc
	Combine CombineFunc

	Model ModelConfig

	// Concurrency bounds the map phase; refine is inherently sequential.
	Concurrency int
	// CombineBudget caps the character size of a combine prompt's input.
	// Larger joined partials are re-chunked and reduced as a tree.
	CombineBudget int
}

func (j Job) validate() error {
	if len(j.Chunks) == 0 {
		return fmt.Errorf("%w: no chunks to reduce", ErrTransform)
	}
	if j.OneShot == nil {
		return fmt.Errorf("%w: one-shot prompt is required", ErrTransform)
	}
	switch j.Algorithm {
	case AlgorithmOneShot:
		return nil
	case AlgorithmRefine:
		if j.Seed == nil || j.Refine == nil {
			return fmt.Errorf("%w: refine requires seed and refine prompts", ErrTransform)
		}
		if j.Map != nil || j.Combine != nil {
			return fmt.Errorf("%w: refine job must not carry map/combine prompts", ErrTransform)
		}
	case AlgorithmMapReduce:
		if j.Map == nil || j.Combine == nil {
			return fmt.Errorf("%w: map-reduce requires map and combine prompts", ErrTransform)
		}
		if j.Seed == nil && j.Refine == nil {
			return nil
		}
		return fmt.Errorf("%w: map-reduce job must not carry seed/refine prompts", ErrTransform)
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrTransform, j.Algorithm)
	}
	return nil
}

// Run reduces the job's chunks to a single document. Chunk order is the
// processing order; any failed model call aborts the whole job and partial
// results are discarded.
func Run(ctx context.Context, t Transform, job Job) (string, error) {
	if err := job.validate(); err != nil {
		return "", err
	}

	// Single chunk fits one call; skip multi-step reduction entirely.
	if len(job.Chunks) == 1 || job.Algorithm == AlgorithmOneShot {
		out, err := t.Invoke(ctx, job.OneShot(job.Chunks[0].Content), job.Model)
		if err != nil {
			return "", fmt.Errorf("%w: one-shot: %v", ErrTransform, err)
		}
		return out, nil
	}

	switch job.Algorithm {
	case AlgorithmRefine:
		return runRefine(ctx, t, job)
	default:
		return runMapReduce(ctx, t, job)
	}
}

// runRefine folds chunks strictly in index order. Each step's prompt embeds
// the previous step's output, so no parallelism is possible within a job.
func runRefine(ctx context.Context, t Transform, job Job) (string, error) {
	acc, err := t.Invoke(ctx, job.Seed(job.Chunks[0].Content), job.Model)
	if err != nil {
		return "", fmt.Errorf("%w: seed step: %v", ErrTransform, err)
	}

	for _, chunk := range job.Chunks[1:] {
		acc, err = t.Invoke(ctx, job.Refine(acc, chunk.Content), job.Model)
		if err != nil {
			return "", fmt.Errorf("%w: refine step %d: %v", ErrTransform, chunk.Index, err)
		}
	}
	return acc, nil
}

// runMapReduce maps every chunk independently under a concurrency bound, then
// combines all partials. When the joined partials exceed the combine budget,
// the combine phase itself is re-chunked and reduced recursively so a large
// chunk count can never produce an oversized combine prompt.
func runMapReduce(ctx context.Context, t Transform, job Job) (string, error) {
	concurrency := job.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	budget := job.CombineBudget
	if budget <= 0 {
		budget = defaultCombineBudget
	}

	partials, err := mapPhase(ctx, t, job.Model, job.Map, job.Chunks, concurrency)
	if err != nil {
		return "", err
	}

	joined := strings.Join(partials, partialSeparator)

	// Tree reduction: shrink oversized partial sets with intermediate combine
	// passes until one final combine call fits the budget.
	for depth := 0; len(joined) > budget; depth++ {
		if depth >= maxTreeDepth {
			return "", fmt.Errorf("%w: combine input still %d chars over budget after %d passes", ErrTransform, len(joined)-budget, depth)
		}

		regrouped, err := text.Split(joined, budget, 0)
		if err != nil {
			return "", fmt.Errorf("%w: combine re-chunk: %v", ErrTransform, err)
		}
		if len(regrouped) <= 1 {
			break
		}

		partials, err = mapPhase(ctx, t, job.Model, MapFunc(job.Combine), regrouped, concurrency)
		if err != nil {
			return "", err
		}
		joined = strings.Join(partials, partialSeparator)
	}

	out, err := t.Invoke(ctx, job.Combine(joined), job.Model)
	if err != nil {
		return "", fmt.Errorf("%w: combine step: %v", ErrTransform, err)
	}
	return out, nil
}

// mapPhase runs prompt over every chunk concurrently, preserving index order
// in the returned partials. The first failure cancels the group.
func mapPhase(ctx context.Context, t Transform, cfg ModelConfig, prompt MapFunc, chunks []text.Chunk, concurrency int) ([]string, error) {
	partials := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := t.Invoke(gctx, prompt(chunk.Content), cfg)
			if err != nil {
				return fmt.Errorf("%w: map chunk %d: %v", ErrTransform, chunk.Index, err)
			}
			partials[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}
