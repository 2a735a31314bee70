package model

// Config holds the complete runtime configuration for a coding run
type Config struct {
	Dictionaries DictConfig   `yaml:"dictionaries"`
	Clauses      ClauseConfig `yaml:"clauses"`
	Coding       CodingConfig `yaml:"coding"`
	Output       OutputConfig `yaml:"output"`
	Workers      int          `yaml:"workers"` // stories coded in parallel; 1 = sequential
}

// DictConfig lists the dictionary files loaded at startup.
// Verb, actor and agent files are required; discard and issue files are optional.
type DictConfig struct {
	VerbFile    string   `yaml:"verb_file"`
	ActorFiles  []string `yaml:"actor_files"`
	AgentFile   string   `yaml:"agent_file"`
	DiscardFile string   `yaml:"discard_file"`
	IssueFile   string   `yaml:"issue_file"`
}

// ClauseConfig holds the comma-delimited clause elimination thresholds.
// A zero Max disables the corresponding pass.
type ClauseConfig struct {
	InitialMin  int `yaml:"initial_min"`
	InitialMax  int `yaml:"initial_max"`
	InternalMin int `yaml:"internal_min"`
	InternalMax int `yaml:"internal_max"`
	TerminalMin int `yaml:"terminal_min"`
	TerminalMax int `yaml:"terminal_max"`
}

// CodingConfig controls event extraction behavior
type CodingConfig struct {
	RequireDyad    bool `yaml:"require_dyad"`     // drop events with an unresolved side
	NewActorLength int  `yaml:"new_actor_length"` // max words for quoted pseudo-codes; 0 disables
	StopOnError    bool `yaml:"stop_on_error"`    // promote sentence warnings to fatal (debugging)
}

// OutputConfig controls event record annotation and rendering
type OutputConfig struct {
	WriteActorRoot bool `yaml:"write_actor_root"` // append root actor phrase to records
	WriteActorText bool `yaml:"write_actor_text"` // append matched entity text to records
	Verbose        bool `yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Clauses: ClauseConfig{
			InitialMin:  0,
			InitialMax:  0, // initial clause deletion tends to orphan opening tags
			InternalMin: 2,
			InternalMax: 8,
			TerminalMin: 2,
			TerminalMax: 8,
		},
		Coding: CodingConfig{
			RequireDyad:    true,
			NewActorLength: 0,
		},
		Workers: 1,
	}
}
