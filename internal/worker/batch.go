package worker

import (
	"context"

	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/pipeline"
)

// StoryCoder codes one story. Implemented by pipeline.Coder, whose tables
// are read-only, so one coder serves every worker.
type StoryCoder interface {
	CodeStory(ctx context.Context, story model.Story) pipeline.StoryResult
}

// StoryJob codes a single story on the pool. Index preserves the input
// order of the batch.
type StoryJob struct {
	Index int
	Story model.Story
	Coder StoryCoder
}

// Execute codes the job's story.
func (j *StoryJob) Execute(ctx context.Context) Result {
	return &StoryOutcome{Index: j.Index, Result: j.Coder.CodeStory(ctx, j.Story)}
}

// StoryOutcome is the pool result wrapper for one coded story.
type StoryOutcome struct {
	Index  int
	Result pipeline.StoryResult
}

// GetError returns the story's fatal error, if any.
func (r *StoryOutcome) GetError() error {
	return r.Result.Err
}

// BatchCoder codes a batch of stories, in parallel when more than one
// worker is configured. Output order always follows input order.
type BatchCoder struct {
	coder   StoryCoder
	workers int
}

func NewBatchCoder(coder StoryCoder, workers int) *BatchCoder {
	if workers <= 0 {
		workers = 1
	}
	return &BatchCoder{coder: coder, workers: workers}
}

// Process codes all stories and returns one result per story, input order.
func (b *BatchCoder) Process(ctx context.Context, stories []model.Story) []pipeline.StoryResult {
	results := make([]pipeline.StoryResult, len(stories))
	if b.workers == 1 || len(stories) < 2 {
		for i, story := range stories {
			results[i] = b.coder.CodeStory(ctx, story)
		}
		return results
	}

	pool := NewPool(b.workers, len(stories))
	pool.Start()
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()
	for i, story := range stories {
		pool.Submit(&StoryJob{Index: i, Story: story, Coder: b.coder})
	}
	for _, res := range pool.Wait() {
		outcome := res.(*StoryOutcome)
		results[outcome.Index] = outcome.Result
	}
	close(done)
	return results
}
