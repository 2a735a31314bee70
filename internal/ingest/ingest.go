// Package ingest reads story files. A story file is a YAML sequence of
// story records, each with an id, a date, an optional source and its
// sentences; every sentence carries its text and a bracketed constituency
// parse produced upstream.
package ingest

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/model"
)

// Load reads one story file.
func Load(path string, log *zap.SugaredLogger) ([]model.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stories: %w", err)
	}
	var stories []model.Story
	if err := yaml.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("parse stories %s: %w", path, err)
	}
	return clean(stories, path, log), nil
}

// LoadAll reads and concatenates several story files in argument order.
func LoadAll(paths []string, log *zap.SugaredLogger) ([]model.Story, error) {
	var all []model.Story
	for _, path := range paths {
		stories, err := Load(path, log)
		if err != nil {
			return nil, err
		}
		all = append(all, stories...)
	}
	return all, nil
}

// clean validates the loaded records: stories need an id and a valid date,
// sentences need a parse. Bad records are dropped with a log line rather
// than failing the batch.
func clean(stories []model.Story, path string, log *zap.SugaredLogger) []model.Story {
	out := stories[:0]
	for _, story := range stories {
		if story.ID == "" {
			log.Warnw("story without id skipped", "file", path)
			continue
		}
		if _, err := dict.OrdinalDate(story.Date); err != nil {
			log.Warnw("story with bad date skipped", "story", story.ID, "date", story.Date)
			continue
		}
		kept := story.Sentences[:0]
		for _, sent := range story.Sentences {
			if sent.Parse == "" {
				log.Warnw("sentence without parse skipped", "story", story.ID, "sentence", sent.ID)
				continue
			}
			kept = append(kept, sent)
		}
		story.Sentences = kept
		out = append(out, story)
	}
	return out
}
