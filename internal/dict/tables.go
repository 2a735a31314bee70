package dict

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/statecraft/tricode/internal/model"
)

// Tables bundles the compiled dictionaries. Built once at startup and
// read-only thereafter, so it may be shared across concurrently coded
// stories.
type Tables struct {
	Verbs    *VerbTable
	Actors   *ActorTable
	Agents   *AgentTable
	Discards *DiscardList // nil when no discard file is configured
	Issues   *IssueList   // nil when no issue file is configured
}

// Load compiles all configured dictionaries. Verb, actor and agent files
// are required; a missing required file is fatal. Discard and issue files
// are optional.
func Load(cfg model.DictConfig, log *zap.SugaredLogger) (*Tables, error) {
	log = nopLogger(log)
	if cfg.VerbFile == "" || len(cfg.ActorFiles) == 0 || cfg.AgentFile == "" {
		return nil, fmt.Errorf("verb, actor and agent dictionaries are required")
	}

	verbs, err := LoadVerbs(cfg.VerbFile, log)
	if err != nil {
		return nil, err
	}
	actors, err := LoadActors(cfg.ActorFiles, log)
	if err != nil {
		return nil, err
	}
	agents, err := LoadAgents(cfg.AgentFile, log)
	if err != nil {
		return nil, err
	}

	t := &Tables{Verbs: verbs, Actors: actors, Agents: agents}
	if cfg.DiscardFile != "" {
		t.Discards, err = LoadDiscards(cfg.DiscardFile, log)
		if err != nil {
			return nil, err
		}
	}
	if cfg.IssueFile != "" {
		t.Issues, err = LoadIssues(cfg.IssueFile, log)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}
