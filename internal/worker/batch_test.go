package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/pipeline"
)

// fakeCoder echoes the story id back as its result
type fakeCoder struct {
	calls int32
}

func (c *fakeCoder) CodeStory(ctx context.Context, story model.Story) pipeline.StoryResult {
	atomic.AddInt32(&c.calls, 1)
	if err := ctx.Err(); err != nil {
		return pipeline.StoryResult{ID: story.ID, Err: err}
	}
	return pipeline.StoryResult{ID: story.ID, Date: story.Date}
}

func stories(n int) []model.Story {
	out := make([]model.Story, n)
	for i := range out {
		out[i] = model.Story{ID: string(rune('A' + i)), Date: "19950615"}
	}
	return out
}

func TestBatchCoderSequential(t *testing.T) {
	coder := &fakeCoder{}
	results := NewBatchCoder(coder, 1).Process(context.Background(), stories(3))
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&coder.calls))
	for i, res := range results {
		assert.Equal(t, string(rune('A'+i)), res.ID)
	}
}

func TestBatchCoderParallelKeepsOrder(t *testing.T) {
	coder := &fakeCoder{}
	input := stories(16)
	results := NewBatchCoder(coder, 4).Process(context.Background(), input)
	require.Len(t, results, len(input))
	assert.Equal(t, int32(len(input)), atomic.LoadInt32(&coder.calls))
	for i, res := range results {
		assert.Equal(t, input[i].ID, res.ID, "result %d out of order", i)
	}
}

func TestBatchCoderEmpty(t *testing.T) {
	results := NewBatchCoder(&fakeCoder{}, 4).Process(context.Background(), nil)
	assert.Empty(t, results)
}

func TestBatchCoderDefaultsWorkers(t *testing.T) {
	b := NewBatchCoder(&fakeCoder{}, 0)
	assert.Equal(t, 1, b.workers)
}
