// Package pipeline drives the coding of stories: discard screening, the
// per-sentence normalize / elide / resolve / match / assemble chain, issue
// coding and the batch summary counters.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/statecraft/tricode/internal/assemble"
	"github.com/statecraft/tricode/internal/clause"
	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/match"
	"github.com/statecraft/tricode/internal/model"
	"github.com/statecraft/tricode/internal/resolve"
	"github.com/statecraft/tricode/internal/tree"
)

// SkipDiscard marks a sentence dropped by the discard list rather than by a
// coding failure.
const SkipDiscard = "discard"

// Coder runs the full coding chain. The dictionaries and configuration are
// read-only after construction, so one Coder may code stories concurrently;
// per-sentence state never leaves the call.
type Coder struct {
	tables    *dict.Tables
	clauses   *clause.Filter
	resolver  *resolve.Resolver
	matcher   *match.Matcher
	assembler *assemble.Assembler
	coding    model.CodingConfig
	log       *zap.SugaredLogger
}

func NewCoder(cfg *model.Config, tables *dict.Tables, log *zap.SugaredLogger) *Coder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Coder{
		tables:    tables,
		clauses:   clause.New(cfg.Clauses),
		resolver:  resolve.New(tables),
		matcher:   match.New(tables.Verbs, cfg.Coding, cfg.Output),
		assembler: assemble.New(cfg.Coding),
		coding:    cfg.Coding,
		log:       log,
	}
}

// StoryResult is the coding outcome for one story.
type StoryResult struct {
	ID        string                 `json:"id"`
	Date      string                 `json:"date"`
	Source    string                 `json:"source,omitempty"`
	Discarded bool                   `json:"discarded,omitempty"` // story-level discard
	Phrase    string                 `json:"discard_phrase,omitempty"`
	Sentences []model.SentenceResult `json:"sentences,omitempty"`
	Err       error                  `json:"-"`
}

// CodeStory codes every sentence of a story. A story-level discard phrase
// in any sentence abandons the whole story; sentence-level failures are
// isolated unless stop_on_error promotes them.
func (c *Coder) CodeStory(ctx context.Context, story model.Story) StoryResult {
	result := StoryResult{ID: story.ID, Date: story.Date, Source: story.Source}

	orddate, err := dict.OrdinalDate(story.Date)
	if err != nil {
		result.Err = fmt.Errorf("story %s: %w", story.ID, err)
		return result
	}

	for _, sent := range story.Sentences {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}

		kind, phrase := c.tables.Discards.Check(sent.Text)
		if kind == dict.DiscardStory {
			c.log.Infow("story discarded", "story", story.ID, "phrase", phrase)
			result.Discarded = true
			result.Phrase = phrase
			result.Sentences = nil
			return result
		}
		sr := model.SentenceResult{ID: sent.ID, Date: story.Date}
		if kind == dict.DiscardSentence {
			c.log.Infow("sentence discarded", "sentence", sent.ID, "phrase", phrase)
			sr.Skip = SkipDiscard
			result.Sentences = append(result.Sentences, sr)
			continue
		}

		events, err := c.codeSentence(sent, orddate)
		if err != nil {
			var skip *model.SkipSentence
			if !errors.As(err, &skip) || c.coding.StopOnError {
				result.Err = fmt.Errorf("sentence %s: %w", sent.ID, err)
				return result
			}
			c.log.Warnw("sentence skipped", "sentence", sent.ID, "tag", skip.Tag, "detail", skip.Detail)
			sr.Skip = skip.Tag
			result.Sentences = append(result.Sentences, sr)
			continue
		}

		sr.Events = events
		if len(events) > 0 {
			sr.Issues = c.tables.Issues.Find(sent.Text)
		}
		result.Sentences = append(result.Sentences, sr)
	}
	return result
}

// codeSentence runs one sentence through the coding chain.
func (c *Coder) codeSentence(sent model.Sentence, orddate int) ([]model.Event, error) {
	seq, err := tree.Normalize(sent.Parse)
	if err != nil {
		return nil, err
	}
	seq, err = c.clauses.Apply(seq)
	if err != nil {
		return nil, err
	}
	seq, roots, err := c.resolver.Assign(seq, orddate)
	if err != nil {
		return nil, err
	}
	matches, err := c.matcher.FindEvents(seq, roots)
	if err != nil {
		return nil, err
	}
	return c.assembler.Events(matches), nil
}

// Summarize tallies the batch counters over the story results. Sentences
// counts every sentence examined, including discarded and skipped ones;
// EmptySentence counts sentences that coded cleanly but produced no events.
func Summarize(results []StoryResult) model.Summary {
	var s model.Summary
	for _, story := range results {
		s.Stories++
		if story.Discarded {
			s.DiscardStory++
			continue
		}
		for _, sent := range story.Sentences {
			s.Sentences++
			switch {
			case sent.Skip == SkipDiscard:
				s.DiscardSent++
			case sent.Skip != "":
				s.EmptySentence++
			case len(sent.Events) == 0:
				s.EmptySentence++
			default:
				s.Events += len(sent.Events)
			}
		}
	}
	return s
}
